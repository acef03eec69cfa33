// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package admm

import "math"

// BalancePenalty implements the residual-balancing penalty update of
// equation (3.13) in Boyd et al.: whenever one residual exceeds 𝛍 times
// the other, 𝛒 is rescaled by 𝛕 so that the dominant residual shrinks
// faster on the next iterations.
//
//	primal > 𝛍·dual → 𝛕𝛒
//	dual > 𝛍·primal → 𝛒/𝛕
//	otherwise       → 𝛒
func BalancePenalty(primal, dual, mu, tau, rho float64) float64 {
	switch {
	case primal > mu*dual:
		return tau * rho
	case dual > mu*primal:
		return rho / tau
	default:
		return rho
	}
}

// SpectralPenalty implements the spectral (Barzilai-Borwein) penalty
// update of Xu, Figueiredo & Goldstein, equations (26)-(30).
//
// The inputs are finite differences taken between the current iterates and
// the previous adaptation checkpoint:
//
//	dLambdaHat = 𝛌̂ₖ - 𝛌̂ₖ₀   dLambda = 𝛌ₖ - 𝛌ₖ₀
//	dH = -𝐀(𝐱ₖ - 𝐱ₖ₀)        dG = -𝐁(𝐲ₖ - 𝐲ₖ₀)
//
// From these it forms steepest-descent and minimum-gradient stepsizes,
// hybridizes them following "Gradient Methods with Adaptive Step-Sizes"
// by Zhou, Gao & Dai, and accepts each estimate only if its quasi-Newton
// correlation exceeds epsCor; when both are rejected the current rho is
// kept.
//
// The denominators are deliberately not guarded: when consecutive deltas
// coincide (as they can on a degenerate first checkpoint) the division
// propagates NaN or Inf into the returned value.
func SpectralPenalty[R, D any](dLambdaHat, dLambda, dH, dG R,
	dot InnerProduct[R, D], epsCor, rho float64, data D) float64 {

	// Cache the pairwise inner products shared between the stepsizes and
	// the correlations.
	hatHat := dot(dLambdaHat, dLambdaHat, data)
	hHat := dot(dH, dLambdaHat, data)
	hh := dot(dH, dH, data)

	ll := dot(dLambda, dLambda, data)
	gl := dot(dG, dLambda, data)
	gg := dot(dG, dG, data)

	// Steepest-descent and minimum-gradient stepsizes, eq. (26).
	alphaSD := hatHat / hHat
	alphaMG := hHat / hh

	betaSD := ll / gl
	betaMG := gl / gg

	// Hybrid stepsizes, eq. (27).
	alpha := alphaSD - alphaMG/2
	if 2*alphaMG > alphaSD {
		alpha = alphaMG
	}
	beta := betaSD - betaMG/2
	if 2*betaMG > betaSD {
		beta = betaMG
	}

	// Quasi-Newton correlations, eq. (29).
	alphaCor := hHat / (math.Sqrt(hh) * math.Sqrt(hatHat))
	betaCor := gl / (math.Sqrt(gg) * math.Sqrt(ll))

	// Safeguard selection, eq. (30).
	switch {
	case alphaCor > epsCor && betaCor > epsCor:
		return math.Sqrt(alpha * beta)
	case alphaCor > epsCor:
		return alpha
	case betaCor > epsCor:
		return beta
	default:
		return rho
	}
}
