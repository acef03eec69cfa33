// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package admm

import (
	"log/slog"
	"math"
	"strconv"
	"time"
)

// Problem specifies a two-block split problem over three spaces:
// the 𝐱-block lives in X, the 𝐲-block in Y, and the coupling constraint
// 𝐀𝐱 + 𝐁𝐲 = 𝐜 in R. D is the opaque problem data forwarded unchanged to
// every oracle, operator, and inner-product call of one Solve run.
type Problem[X Variable[X], Y Variable[Y], R Variable[R], D any] struct {
	MinLx AugLagMinX[X, Y, R, D] // 𝐱-block minimizer of ℒᵨ
	MinLy AugLagMinY[X, Y, R, D] // 𝐲-block minimizer of ℒᵨ
	A     LinearOperator[X, R, D]
	B     LinearOperator[Y, R, D]
	At    LinearOperator[R, X, D] // adjoint of A: ⟨𝐀𝐱,𝐫⟩ = ⟨𝐱,𝐀ᵗ𝐫⟩
	DotX  InnerProduct[X, D]      // inner product on X
	DotR  InnerProduct[R, D]      // inner product on R
	C     R                       // constraint constant 𝐜
}

// Solve runs ADMM from the initial pair (x0,y0).
//
// The dual variable starts at 𝛌 = 𝛒(𝐀𝐱₀+𝐁𝐲₀-𝐜) and every iteration
// performs, in order: the time budget test, the 𝐱-update, the 𝐲-update,
// the dual update 𝛌 ← 𝛌 + 𝛒(𝐀𝐱+𝐁𝐲-𝐜), the residual stopping test, and
// the gated penalty adaptation. Exactly one of the three statuses is
// produced. Iterates are owned by the loop: oracles receive them by value
// and must not retain aliases.
func (p *Problem[X, Y, R, D]) Solve(x0 X, y0 Y, data D, params *Params) *Result[X, Y] {

	watch := newStopwatch(params.Now)
	budget := params.MaxTime
	if budget <= 0 {
		budget = math.MaxInt64
	}

	n := max(params.MaxIterations, 0)
	res := &Result[X, Y]{
		Status: IterationLimit,
		History: History{
			Time:            make([]time.Duration, 0, n),
			PrimalResiduals: make([]float64, 0, n),
			DualResiduals:   make([]float64, 0, n),
			Penalties:       make([]float64, 0, n),
		},
	}
	if params.LogIterates {
		res.Iterates = make([]Iterate[X, Y], 0, n)
	}

	x, y := x0, y0
	yPrev := y0
	rho := params.Rho
	lambda := p.A(x, data).Add(p.B(y, data)).Sub(p.C).Scale(rho)

	// Checkpoint of the previous spectral adaptation step.
	var xc X
	var yc Y
	var lambdaC, lambdaHatC, lambdaHat R
	if params.Adaptation == Spectral {
		xc, yc, lambdaC, lambdaHatC = x, y, lambda, lambda
	}

	cNorm := math.Sqrt(p.DotR(p.C, p.C, data))

	lg := params.reporter()
	if lg != nil {
		lg.Info("admm: starting optimization",
			slog.Int("maxIterations", params.MaxIterations),
			slog.String("rho", formatE(rho, params.Precision)))
	}

	var primal, dual float64
	for i := 0; i < params.MaxIterations; i++ {

		// The elapsed time recorded at the START of this iteration.
		elapsed := watch.elapsed()
		if elapsed > budget {
			res.Status = ElapsedTime
			break
		}

		// Minimize the augmented Lagrangian over each block in turn.
		// The y-update sees the already-updated x.
		x = p.MinLx(x, y, lambda, rho, data)
		y = p.MinLy(x, y, lambda, rho, data)

		ax := p.A(x, data)
		by := p.B(y, data)
		r := ax.Add(by).Sub(p.C)

		adapt := params.Adaptation != NoAdaptation &&
			i%params.AdaptationPeriod == 0 && i < params.AdaptationWindow

		if params.Adaptation == Spectral && adapt {
			// The spectral method needs the dual estimate at the
			// pre-update multiplier, so capture it before 𝛌 changes.
			lambdaHat = lambda.Add(ax.Add(p.B(yPrev, data)).Sub(p.C).Scale(rho))
		}

		lambda = lambda.Add(r.Scale(rho))

		s := p.At(p.B(y.Sub(yPrev), data), data).Scale(rho)

		primal = math.Sqrt(p.DotR(r, r, data))
		dual = math.Sqrt(p.DotX(s, s, data))

		if lg != nil {
			lg.Info("admm: iteration",
				slog.Int("iter", i),
				slog.Duration("elapsed", elapsed),
				slog.String("primal", formatE(primal, params.Precision)),
				slog.String("dual", formatE(dual, params.Precision)),
				slog.String("rho", formatE(rho, params.Precision)))
		}

		res.Time = append(res.Time, elapsed)
		res.PrimalResiduals = append(res.PrimalResiduals, primal)
		res.DualResiduals = append(res.DualResiduals, dual)
		res.Penalties = append(res.Penalties, rho)
		if params.LogIterates {
			res.Iterates = append(res.Iterates, Iterate[X, Y]{x, y})
		}

		// Combined absolute + relative stopping criterion, per Section 3.3.1
		// of Boyd et al.
		axNorm := math.Sqrt(p.DotR(ax, ax, data))
		byNorm := math.Sqrt(p.DotR(by, by, data))
		epsPri := params.EpsAbsPri + params.EpsRel*max(axNorm, byNorm, cNorm)

		atLambda := p.At(lambda, data)
		epsDual := params.EpsAbsDual + params.EpsRel*math.Sqrt(p.DotX(atLambda, atLambda, data))

		if primal < epsPri && dual < epsDual {
			res.Status = ResidualTolerance
			break
		}

		if adapt {
			switch params.Adaptation {
			case ResidualBalance:
				rho = BalancePenalty(primal, dual, params.BalanceMu, params.BalanceTau, rho)
			case Spectral:
				dLambda := lambda.Sub(lambdaC)
				dLambdaHat := lambdaHat.Sub(lambdaHatC)
				// The augmented Lagrangian of Xu et al. negates the residual
				// sign relative to ours, hence the negated operator images.
				dH := p.A(x.Sub(xc), data).Scale(-1)
				dG := p.B(y.Sub(yc), data).Scale(-1)
				rho = SpectralPenalty(dLambdaHat, dLambda, dH, dG, p.DotR,
					params.MinCorrelation, rho, data)
				xc, yc, lambdaC, lambdaHatC = x, y, lambda, lambdaHat
			}
		}

		yPrev = y
	}

	res.X, res.Y = x, y
	res.Elapsed = watch.elapsed()

	if lg != nil {
		lg.Info("admm: finished",
			slog.String("status", res.Status.String()),
			slog.String("primal", formatE(primal, params.Precision)),
			slog.String("dual", formatE(dual, params.Precision)),
			slog.Duration("elapsed", res.Elapsed))
	}
	return res
}

// SingleProblem specializes Problem to the common case where the two
// blocks and the constraint share one representation, with a single inner
// product serving both the block-space and constraint-space roles.
type SingleProblem[V Variable[V], D any] struct {
	MinLx AugLagMinX[V, V, V, D]
	MinLy AugLagMinY[V, V, V, D]
	A     LinearOperator[V, V, D]
	B     LinearOperator[V, V, D]
	At    LinearOperator[V, V, D]
	Dot   InnerProduct[V, D]
	C     V
}

// Solve forwards to the general three-space solver. No additional
// semantics.
func (p *SingleProblem[V, D]) Solve(x0, y0 V, data D, params *Params) *Result[V, V] {
	q := Problem[V, V, V, D]{
		MinLx: p.MinLx,
		MinLy: p.MinLy,
		A:     p.A,
		B:     p.B,
		At:    p.At,
		DotX:  p.Dot,
		DotR:  p.Dot,
		C:     p.C,
	}
	return q.Solve(x0, y0, data, params)
}

// stopwatch measures elapsed wall time from a caller-supplied monotonic
// clock.
type stopwatch struct {
	now   func() time.Time
	start time.Time
}

func newStopwatch(now func() time.Time) stopwatch {
	if now == nil {
		now = time.Now
	}
	return stopwatch{now: now, start: now()}
}

func (w stopwatch) elapsed() time.Duration {
	return w.now().Sub(w.start)
}

func (p *Params) reporter() *slog.Logger {
	if !p.Verbose {
		return nil
	}
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

func formatE(v float64, prec int) string {
	return strconv.FormatFloat(v, 'e', prec, 64)
}
