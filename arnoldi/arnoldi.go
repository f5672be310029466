// Package arnoldi builds an orthonormal Krylov basis and its (extended)
// Hessenberg projection of H*dt using a single pass of modified Gram-Schmidt.
//
// This mirrors the structure of (*tensor.Arnoldi).iterate/gramSchimdt in the
// teacher codebase, but implements the spec's restart-friendly contract
// instead: the caller supplies the seed in basis[0] and gets back exactly one
// Hessenberg projection, with no re-orthogonalization and no implicit
// restart baked in (that is the job of the outer driver, not this package).
package arnoldi

import (
	"github.com/fumin/qprop/matx"
	"github.com/fumin/qprop/qvec"
)

// Result carries the outcome of a single Arnoldi run.
type Result struct {
	// M is the achieved Krylov dimension, M <= the requested m.
	M int
	// Breakdown is true when the iteration terminated early because the
	// next Krylov vector collapsed to (numerically) zero, i.e. the seed
	// lies in an H-invariant subspace of dimension M. This is not an
	// error: it is a successful short-circuit (spec.md §4.2, §7).
	Breakdown bool
}

// Run executes m steps of modified Gram-Schmidt Arnoldi on operator h,
// scaling the projection by dt so that hess holds a projection of (H*dt)
// rather than of H.
//
// hess must be at least (m+1)x(m+1); it is fully zeroed before use. basis
// must have length >= m+1 with basis[0] already holding a unit-norm seed
// vector; basis[1..M] are overwritten by this call. basis[m] is normalized
// only when extended is true; otherwise it holds the unnormalized residual.
// On breakdown at step M, basis[M] is left unnormalized.
//
// When extended is true, the (m+1)-th basis vector and its norm
// (Hess[m,m-1] in this zero-indexed storage) are also produced, which the
// restart driver needs to estimate the truncation residual.
func Run(hess *matx.Dense, basis []qvec.Vector, m int, h qvec.Operator, dt complex128, extended bool, normMin float64) Result {
	hess.Zero()

	for j := 1; j <= m; j++ {
		h.Apply(basis[j], basis[j-1])

		for i := 1; i <= j; i++ {
			hij := dt * basis[i-1].Dot(basis[j])
			hess.Set(i-1, j-1, hij)
			basis[j].Axpy(-hij/dt, basis[i-1])
		}

		if j < m || extended {
			norm := basis[j].Norm()
			hess.Set(j, j-1, complex(norm, 0)*dt)
			if norm < normMin {
				return Result{M: j, Breakdown: true}
			}
			basis[j].Scale(complex(1/norm, 0))
		}
	}

	return Result{M: m}
}
