// Package qvec defines the capability contracts consumed from a propagated
// state vector and from the linear operator acting on it.
//
// The inner product convention is conjugate-linear in the first argument and
// linear in the second: <x,y> = sum_i conj(x_i)*y_i. Every caller of Dot and
// every implementation of Vector must respect this convention, since the
// Arnoldi engine in package arnoldi relies on it to produce a Hessenberg
// projection rather than its conjugate transpose.
package qvec

import "math"

// Vector is the capability contract required of state vectors manipulated by
// the propagator. Implementations are mutated in place; Like constructs a
// fresh, uninitialized vector of the same shape so that callers (notably the
// Workspace) can preallocate scratch storage once and reuse it across calls.
type Vector interface {
	// Len returns the number of scalar entries.
	Len() int
	// Like constructs a new, uninitialized vector of the same shape.
	Like() Vector
	// CopyFrom overwrites the receiver with src. src must have the same
	// concrete type and length as the receiver; a mismatch is a contract
	// violation and implementations may panic.
	CopyFrom(src Vector)
	// Zero sets every entry to 0.
	Zero()
	// Scale computes x <- alpha*x.
	Scale(alpha complex128)
	// Axpy computes y <- y + alpha*x, where y is the receiver.
	Axpy(alpha complex128, x Vector)
	// Dot returns <this, y>, conjugate-linear in the receiver.
	Dot(y Vector) complex128
	// Norm returns the Euclidean (2-)norm of the receiver.
	Norm() float64
}

// Operator is the capability contract required of the linear operator H.
// Apply computes dst <- H*src. No other structural information (spectral
// access, sparsity pattern, ...) is required or assumed by the propagator.
type Operator interface {
	Apply(dst, src Vector)
}

// OperatorFunc adapts a plain matvec function to the Operator interface.
type OperatorFunc func(dst, src Vector)

// Apply implements Operator.
func (f OperatorFunc) Apply(dst, src Vector) { f(dst, src) }

// Dense is a reference Vector implementation backed by a flat complex128
// slice. It is the default state-vector type used by callers that do not
// already have their own Vector representation.
type Dense []complex128

// NewDense returns a zero-valued Dense vector of length n.
func NewDense(n int) Dense {
	return make(Dense, n)
}

// Len implements Vector.
func (d Dense) Len() int { return len(d) }

// Like implements Vector.
func (d Dense) Like() Vector { return make(Dense, len(d)) }

// CopyFrom implements Vector.
func (d Dense) CopyFrom(src Vector) {
	copy(d, src.(Dense))
}

// Zero implements Vector.
func (d Dense) Zero() {
	clear(d)
}

// Scale implements Vector.
func (d Dense) Scale(alpha complex128) {
	for i := range d {
		d[i] *= alpha
	}
}

// Axpy implements Vector.
func (d Dense) Axpy(alpha complex128, x Vector) {
	xx := x.(Dense)
	for i := range d {
		d[i] += alpha * xx[i]
	}
}

// Dot implements Vector.
func (d Dense) Dot(y Vector) complex128 {
	yy := y.(Dense)
	var s complex128
	for i := range d {
		s += complexConj(d[i]) * yy[i]
	}
	return s
}

// Norm implements Vector.
func (d Dense) Norm() float64 {
	var sumSq float64
	for _, v := range d {
		sumSq += real(v)*real(v) + imag(v)*imag(v)
	}
	return math.Sqrt(sumSq)
}

func complexConj(z complex128) complex128 {
	return complex(real(z), -imag(z))
}
