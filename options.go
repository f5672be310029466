package qprop

import "math/cmplx"

// Options configures a single Propagate call. Zero value is not usable;
// construct via NewOptions. The chainable-value pattern mirrors
// tensor.ArnoldiOptions in the teacher codebase: each setter returns a
// modified copy, so options can be composed without aliasing surprises.
type Options struct {
	f           func(complex128) complex128
	normMin     float64
	relErr      float64
	maxRestarts int
}

// NewOptions returns the default configuration: f is the time-evolution
// exponential exp(-i*z), normMin is 1e-14, relErr is 1e-12, and maxRestarts
// is 50.
func NewOptions() Options {
	return Options{
		f:           DefaultPropagator,
		normMin:     1e-14,
		relErr:      1e-12,
		maxRestarts: 50,
	}
}

// Func sets the scalar function f to interpolate, f(H*dt) being applied to
// the state. The default is DefaultPropagator.
func (o Options) Func(f func(complex128) complex128) Options {
	o.f = f
	return o
}

// NormMin sets the threshold below which a vector is treated as numerically
// zero (Arnoldi breakdown, residual truncation).
func (o Options) NormMin(v float64) Options {
	o.normMin = v
	return o
}

// RelErr sets the relative-error convergence threshold.
func (o Options) RelErr(v float64) Options {
	o.relErr = v
	return o
}

// MaxRestarts sets the maximum number of Arnoldi restarts before Propagate
// reports ErrNotConverged.
func (o Options) MaxRestarts(v int) Options {
	o.maxRestarts = v
	return o
}

// DefaultPropagator is f(z) = exp(-i*z), the unitary time-evolution operator
// applied to H*dt in quantum dynamics.
func DefaultPropagator(z complex128) complex128 {
	return cmplx.Exp(complex(0, -1) * z)
}
