// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vec provides a dense ℝⁿ vector with the value-semantic algebra
// expected by the solvers in this module: every operation returns a fresh
// vector and never mutates its receiver or arguments.
package vec

import (
	"slices"

	"gonum.org/v1/gonum/floats"
)

// Dense is a dense vector in ℝⁿ.
type Dense []float64

// Add returns v + o.
func (v Dense) Add(o Dense) Dense {
	r := slices.Clone(v)
	floats.Add(r, o)
	return r
}

// Sub returns v - o.
func (v Dense) Sub(o Dense) Dense {
	r := slices.Clone(v)
	floats.Sub(r, o)
	return r
}

// Scale returns t·v.
func (v Dense) Scale(t float64) Dense {
	r := slices.Clone(v)
	floats.Scale(t, r)
	return r
}

// Dot returns the Euclidean inner product ⟨a,b⟩.
func Dot(a, b Dense) float64 {
	return floats.Dot(a, b)
}

// Norm returns the Euclidean norm ‖v‖₂.
func Norm(v Dense) float64 {
	return floats.Norm(v, 2)
}

// Zeros returns the origin of ℝⁿ.
func Zeros(n int) Dense {
	return make(Dense, n)
}
