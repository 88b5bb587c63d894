// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package relaxedmem

import "math/rand/v2"

// Builder creates an Engine with fluent configuration.
//
// Example:
//
//	e := relaxedmem.New(42).WithAddressHint(4).Build()
//	base := e.Allocate(4)
type Builder struct {
	seed        uint64
	addressHint int
}

// New creates an Engine builder seeded for reproducible runs.
//
// The seed is mandatory rather than defaulted: a simulator whose whole
// point is bitwise-reproducible exploration must never let a caller
// reach for the zero value and accidentally depend on it.
func New(seed uint64) *Builder {
	return &Builder{seed: seed}
}

// WithAddressHint pre-sizes the genesis table for n addresses, avoiding
// reallocation on the first Allocate call. Purely a performance hint; it
// changes nothing observable.
func (b *Builder) WithAddressHint(n int) *Builder {
	if n < 0 {
		invariant("WithAddressHint", "address hint must be >= 0, got %d", n)
	}
	b.addressHint = n
	return b
}

// Build creates the configured Engine.
func (b *Builder) Build() *Engine {
	e := &Engine{
		rng: rand.New(rand.NewPCG(b.seed, b.seed^splitConstant)),
	}
	if b.addressHint > 0 {
		e.initial = make([]Record, 0, b.addressHint)
	}
	return e
}

// NewEngine is shorthand for New(seed).Build(), for callers that have no
// need for WithAddressHint.
func NewEngine(seed uint64) *Engine {
	return New(seed).Build()
}

// splitConstant mixes the single caller-supplied seed into PCG's two
// required 64-bit halves. It is a fixed odd constant (the golden-ratio
// fractional bits used throughout splitmix-style generators), not a
// secret — its only job is to decorrelate the two halves.
const splitConstant = 0x9E3779B97F4A7C15
