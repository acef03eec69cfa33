// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package admm_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curioloop/convex/admm"
	"github.com/curioloop/convex/vec"
)

// TestBalancePenalty_Rule checks the three branches of the residual
// balancing rule on hand-picked inputs.
func TestBalancePenalty_Rule(t *testing.T) {
	cases := []struct {
		name                 string
		primal, dual         float64
		mu, tau, rho, expect float64
	}{
		{"primal dominates", 100, 1, 10, 2, 4, 8},
		{"dual dominates", 1, 100, 10, 2, 4, 2},
		{"balanced", 3, 2, 10, 2, 4, 4},
		{"boundary ratio keeps rho", 10, 1, 10, 2, 4, 4},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := admm.BalancePenalty(c.primal, c.dual, c.mu, c.tau, c.rho)
			assert.Equal(t, c.expect, got)
		})
	}
}

// TestBalancePenalty_Property verifies the rule on randomized inputs:
// p > μd ⇒ τρ, d > μp ⇒ ρ/τ, otherwise ρ.
func TestBalancePenalty_Property(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		p := rng.Float64() * 100
		d := rng.Float64() * 100
		mu := 1 + rng.Float64()*20
		tau := 1 + rng.Float64()*5
		rho := rng.Float64()*10 + 1e-6

		got := admm.BalancePenalty(p, d, mu, tau, rho)
		switch {
		case p > mu*d:
			require.Equal(t, tau*rho, got)
		case d > mu*p:
			require.Equal(t, rho/tau, got)
		default:
			require.Equal(t, rho, got)
		}
		require.Greater(t, got, 0.0)
	}
}

func euclid(a, b vec.Dense, _ any) float64 { return vec.Dot(a, b) }

// TestSpectralPenalty_Safeguard exercises the four branches of the
// correlation safeguard with vectors whose inner products are exact.
func TestSpectralPenalty_Safeguard(t *testing.T) {
	const epsCor = 0.2
	const rho = 7.0

	// With dλ̂=[2,0], dH=[1,0]: α_SD = 4/2 = 2, α_MG = 2/1 = 2, α = 2.
	// With dλ=[3,0], dG=[1,0]: β_SD = 9/3 = 3, β_MG = 3/1 = 3, β = 3.
	alignedHat := vec.Dense{2, 0}
	alignedH := vec.Dense{1, 0}
	alignedLam := vec.Dense{3, 0}
	alignedG := vec.Dense{1, 0}

	// Orthogonal counterparts zero out the correlation of one side.
	orthoH := vec.Dense{0, 1}
	orthoG := vec.Dense{0, 1}

	t.Run("both correlations pass", func(t *testing.T) {
		got := admm.SpectralPenalty(alignedHat, alignedLam, alignedH, alignedG,
			admm.InnerProduct[vec.Dense, any](euclid), epsCor, rho, nil)
		assert.InDelta(t, math.Sqrt(6), got, 1e-12)
	})

	t.Run("only alpha passes", func(t *testing.T) {
		got := admm.SpectralPenalty(alignedHat, alignedLam, alignedH, orthoG,
			admm.InnerProduct[vec.Dense, any](euclid), epsCor, rho, nil)
		assert.InDelta(t, 2.0, got, 1e-12)
	})

	t.Run("only beta passes", func(t *testing.T) {
		got := admm.SpectralPenalty(alignedHat, alignedLam, orthoH, alignedG,
			admm.InnerProduct[vec.Dense, any](euclid), epsCor, rho, nil)
		assert.InDelta(t, 3.0, got, 1e-12)
	})

	t.Run("neither passes keeps rho", func(t *testing.T) {
		got := admm.SpectralPenalty(alignedHat, alignedLam, orthoH, orthoG,
			admm.InnerProduct[vec.Dense, any](euclid), epsCor, rho, nil)
		assert.Equal(t, rho, got)
	})
}

// TestSpectralPenalty_HybridStep hits the α_SD - α_MG/2 branch of the
// hybrid stepsize rule: dλ̂=[1,1], dH=[1,0] gives α_SD=2, α_MG=1, so
// 2α_MG ≤ α_SD and α = 2 - 1/2 = 1.5 (β symmetric).
func TestSpectralPenalty_HybridStep(t *testing.T) {
	dHat := vec.Dense{1, 1}
	dH := vec.Dense{1, 0}
	dLam := vec.Dense{1, 1}
	dG := vec.Dense{1, 0}

	got := admm.SpectralPenalty(dHat, dLam, dH, dG,
		admm.InnerProduct[vec.Dense, any](euclid), 0.2, 7, nil)
	assert.InDelta(t, 1.5, got, 1e-12)
}
