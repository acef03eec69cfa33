// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package admm solves convex minimization problems of the form
//
//	minimize 𝒇(𝐱) + 𝒈(𝐲) subject to 𝐀𝐱 + 𝐁𝐲 = 𝐜
//
// via operator splitting with the Alternating Direction Method of
// Multipliers (ADMM), following Section 3.1 of "Distributed Optimization
// and Statistical Learning via the Alternating Direction Method of
// Multipliers" by S. Boyd, N. Parikh, E. Chu, B. Peleato, and J. Eckstein.
//
// Each iteration alternates minimization of the augmented Lagrangian
//
//	ℒᵨ(𝐱,𝐲,𝛌) = 𝒇(𝐱) + 𝒈(𝐲) + ⟨𝛌, 𝐀𝐱+𝐁𝐲-𝐜⟩ + ½𝛒‖𝐀𝐱+𝐁𝐲-𝐜‖²
//
// over the two variable blocks, followed by a gradient ascent step on the
// dual variable 𝛌. The solver is agnostic to the representation of the
// blocks: the caller supplies the per-block minimizers, the linear
// operators 𝐀, 𝐁 and the adjoint 𝐀ᵗ, and the inner products that induce
// the residual norms. The blocks themselves only need the vector-space
// algebra captured by the Variable constraint.
//
// Two optional strategies adapt the penalty parameter 𝛒 during the run:
//   - residual balancing, after "Alternating Direction Method with
//     Self-Adaptive Penalty Parameters" by B. He, H. Yang, and S. Wang
//   - spectral (Barzilai-Borwein) stepsize selection, after "Adaptive ADMM
//     with Spectral Penalty Parameter Selection" by Z. Xu,
//     M.A.T. Figueiredo, and T. Goldstein
package admm

import (
	"log/slog"
	"time"
)

// Variable is the algebra required of every block representation.
// All three operations must return fresh values: the solver assumes value
// semantics and oracles must not retain references past their call.
type Variable[V any] interface {
	Add(V) V
	Sub(V) V
	Scale(float64) V
}

// AugLagMinX returns a minimizer of ℒᵨ(𝐱,𝐲,𝛌) with respect to 𝐱.
// The data value is the opaque problem data fixed for one Solve call.
type AugLagMinX[X, Y, R, D any] func(x X, y Y, lambda R, rho float64, data D) X

// AugLagMinY returns a minimizer of ℒᵨ(𝐱,𝐲,𝛌) with respect to 𝐲,
// evaluated with the already-updated 𝐱.
type AugLagMinY[X, Y, R, D any] func(x X, y Y, lambda R, rho float64, data D) Y

// LinearOperator maps U into V. It is trusted to be linear and
// side-effect-free; the solver never verifies either.
type LinearOperator[U, V, D any] func(u U, data D) V

// InnerProduct is a symmetric positive-definite bilinear form on V.
// It induces the norm ‖v‖ = √⟨v,v⟩ used by all residual measurements.
type InnerProduct[V, D any] func(a, b V, data D) float64

// Adaptation selects the strategy used to adapt the penalty parameter 𝛒.
type Adaptation int

const (
	// NoAdaptation keeps 𝛒 fixed for the whole run (vanilla ADMM).
	NoAdaptation Adaptation = iota
	// ResidualBalance rescales 𝛒 whenever the primal and dual residual
	// magnitudes drift apart (He, Yang & Wang).
	ResidualBalance
	// Spectral estimates 𝛒 with Barzilai-Borwein stepsizes computed from
	// finite differences of the dual estimates (Xu, Figueiredo & Goldstein).
	Spectral
)

func (a Adaptation) String() string {
	switch a {
	case NoAdaptation:
		return "NoAdaptation"
	case ResidualBalance:
		return "ResidualBalance"
	case Spectral:
		return "Spectral"
	default:
		return "Unknown"
	}
}

// Status describes why the solver stopped.
type Status int

const (
	// ResidualTolerance means the combined residual stopping criteria were
	// satisfied: the returned pair is a minimizer up to the tolerances.
	ResidualTolerance Status = iota
	// IterationLimit means the iteration budget ran out first.
	// The returned pair carries no optimality guarantee.
	IterationLimit
	// ElapsedTime means the computation time budget ran out first.
	// The returned pair carries no optimality guarantee.
	ElapsedTime
)

func (s Status) String() string {
	switch s {
	case ResidualTolerance:
		return "ResidualTolerance"
	case IterationLimit:
		return "IterationLimit"
	case ElapsedTime:
		return "ElapsedTime"
	default:
		return "Unknown"
	}
}

// Params holds the tunables for one Solve call. The solver never mutates
// or validates it: out-of-range values (𝛍 ≤ 1, 𝛕 ≤ 1, a correlation
// threshold outside (0,1)) are used as given.
type Params struct {
	// Rho is the initial value of the penalty parameter 𝛒 > 0.
	Rho float64
	// Adaptation selects the penalty adaptation strategy.
	Adaptation Adaptation
	// AdaptationPeriod adapts 𝛒 only on every N-th iteration.
	AdaptationPeriod int
	// AdaptationWindow stops adapting 𝛒 after this many iterations, so that
	// 𝛒 is eventually constant and the fixed-point scheme can converge.
	AdaptationWindow int
	// BalanceMu is the residual-balancing threshold 𝛍 for the maximum
	// admissible ratio between the primal and dual residuals. Must be > 1.
	BalanceMu float64
	// BalanceTau is the residual-balancing multiplicative factor 𝛕 applied
	// to 𝛒 when the ratio exceeds BalanceMu. Must be > 1.
	BalanceTau float64
	// MinCorrelation is the minimum acceptable quality ε𝑐𝑜𝑟 ∈ (0,1) of the
	// quasi-Newton correlation before a spectral stepsize is accepted.
	MinCorrelation float64

	// EpsAbsPri is the absolute primal stopping tolerance.
	EpsAbsPri float64
	// EpsAbsDual is the absolute dual stopping tolerance.
	EpsAbsDual float64
	// EpsRel is the relative stopping tolerance. The iteration stops when
	//  ‖r‖ < EpsAbsPri + EpsRel·𝚖𝚊𝚡(‖𝐀𝐱‖,‖𝐁𝐲‖,‖𝐜‖)  and
	//  ‖s‖ < EpsAbsDual + EpsRel·‖𝐀ᵗ𝛌‖
	EpsRel float64

	// MaxIterations is the limit on the number of iterations.
	MaxIterations int
	// MaxTime is the limit on the total computation time, tested at the top
	// of every iteration. A value ≤ 0 means no time limit.
	MaxTime time.Duration

	// Verbose enables a per-iteration report and a final summary.
	Verbose bool
	// Precision is the number of digits used to format residual and penalty
	// values in verbose reports.
	Precision int
	// LogIterates records the (x,y) pair of every iteration in the result.
	LogIterates bool
	// Logger receives the verbose reports. Nil falls back to slog.Default().
	Logger *slog.Logger
	// Now overrides the clock used for the time budget and the reported
	// elapsed times. Nil falls back to time.Now.
	Now func() time.Time
}

// DefaultParams returns the standard configuration: vanilla ADMM with
// 𝛒 = 1, tolerances 𝚎𝚙𝚜_𝚊𝚋𝚜 = 1e-2 and 𝚎𝚙𝚜_𝚛𝚎𝚕 = 1e-3, a budget of 1000
// iterations and unlimited computation time.
func DefaultParams() Params {
	return Params{
		Rho:              1.0,
		Adaptation:       NoAdaptation,
		AdaptationPeriod: 2,
		AdaptationWindow: 1000,
		BalanceMu:        10,
		BalanceTau:       2,
		MinCorrelation:   0.2,
		EpsAbsPri:        1e-2,
		EpsAbsDual:       1e-2,
		EpsRel:           1e-3,
		MaxIterations:    1000,
		Precision:        3,
	}
}

// Iterate is one recorded (x,y) snapshot.
type Iterate[X, Y any] struct {
	X X
	Y Y
}

// History collects per-iteration telemetry, one entry per completed
// iteration.
type History struct {
	// Time holds the elapsed time recorded at the start of each iteration.
	Time []time.Duration
	// PrimalResiduals holds ‖𝐀𝐱+𝐁𝐲-𝐜‖ at the end of each iteration.
	PrimalResiduals []float64
	// DualResiduals holds ‖𝛒𝐀ᵗ𝐁(𝐲ₖ-𝐲ₖ₋₁)‖ at the end of each iteration.
	DualResiduals []float64
	// Penalties holds the penalty parameter employed by each iteration.
	Penalties []float64
}

// Result is the output of one Solve call.
type Result[X, Y any] struct {
	// Status is the stopping condition that terminated the run.
	Status Status
	// X, Y form the final estimate of the split minimizer.
	X X
	Y Y
	// Elapsed is the total computation time of the run.
	Elapsed time.Duration
	// History is the per-iteration telemetry.
	History
	// Iterates holds the (x,y) snapshots, populated only when
	// Params.LogIterates is set.
	Iterates []Iterate[X, Y]
}
