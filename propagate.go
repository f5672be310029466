// Package qprop computes psi_out = f(H*dt) * psi_in for a Hermitian (or
// general) linear operator H, using a restarted Arnoldi process combined
// with Newton interpolation at greedily chosen Leja points.
//
// The restart loop mirrors the structure of the teacher codebase's
// (*tensor.Arnoldi).Do driver in spirit (build a Krylov basis, project,
// extract spectral information, accumulate a correction, check
// convergence) but replaces eigendecomposition-based reconstruction with
// the Newton-Leja polynomial evaluation this module is built around.
package qprop

import (
	"math"
	"math/cmplx"

	"github.com/pkg/errors"

	"github.com/fumin/qprop/arnoldi"
	"github.com/fumin/qprop/hess"
	"github.com/fumin/qprop/leja"
	"github.com/fumin/qprop/matx"
	"github.com/fumin/qprop/newton"
	"github.com/fumin/qprop/qvec"
)

// Propagate overwrites psi with f(H*dt)*psi, where f defaults to the
// unitary time-evolution exponential exp(-i*z) (see DefaultPropagator). ws
// must have been built with NewWorkspace(psi-shaped-prototype, mMax) for
// some mMax; it is reset and fully reused by this call, so a Workspace must
// not be shared across concurrent Propagate calls.
//
// At most one Options value may be passed; omitting it uses NewOptions's
// defaults.
func Propagate(psi qvec.Vector, h qvec.Operator, dt complex128, ws *Workspace, opts ...Options) error {
	if dt == 0 {
		return ErrZeroStep
	}
	if psi.Len() != ws.n {
		return ErrShapeMismatch
	}

	o := NewOptions()
	if len(opts) > 0 {
		o = opts[0]
	}

	ws.reset()

	beta := psi.Norm()
	if beta <= o.normMin {
		return nil
	}

	v := ws.scratch
	v.CopyFrom(psi)
	v.Scale(complex(1/beta, 0))

	restart := 0
	for {
		m := ws.mMax
		basis := ws.basis[:m+1]
		basis[0].CopyFrom(v)

		res := arnoldi.Run(ws.hess, basis, m, h, dt, true, o.normMin)
		m = res.M

		ritz := hess.Eigenvalues(ws.hess, m, true)
		if restart == 0 {
			last := ritz[(m-1)*m/2 : (m-1)*m/2+m]
			var maxAbs float64
			for _, z := range last {
				if a := cmplx.Abs(z); a > maxAbs {
					maxAbs = a
				}
			}
			ws.radius = 1.2 * maxAbs
		}

		nS := ws.nLeja
		ws.ensureLejaCap(nS + m)
		appended := leja.Select(ws.leja, nS, ritz, m)
		ws.nLeja = nS + appended

		if err := newton.Extend(ws.coef, ws.nA, ws.leja, ws.nLeja, ws.radius, o.f); err != nil {
			return errors.Wrap(err, "qprop: propagate")
		}
		ws.nA = ws.nLeja

		r := ws.rbuf[:m]
		p := ws.pbuf[:m]
		clear(r)
		clear(p)
		r[0] = complex(beta, 0)
		p[0] = ws.coef[nS] * complex(beta, 0)

		hBlock := ws.hess.Block(0, m, 0, m)
		tmp := ws.rtmp[:m]
		for k := 0; k <= m-2; k++ {
			applyShiftedMatVec(tmp, r, hBlock, ws.leja[nS+k], ws.radius, m, m)
			copy(r, tmp)
			for i := 0; i < m; i++ {
				p[i] += ws.coef[nS+k+1] * r[i]
			}
		}

		if restart == 0 {
			psi.Zero()
		}
		for i := 0; i < m; i++ {
			psi.Axpy(p[i], basis[i])
		}

		extBlock := ws.hess.Block(0, m+1, 0, m)
		rext := ws.rtmp[:m+1]
		applyShiftedMatVec(rext, r, extBlock, ws.leja[nS+m-1], ws.radius, m+1, m)

		var sumSq float64
		for _, z := range rext {
			sumSq += real(z)*real(z) + imag(z)*imag(z)
		}
		betaNew := math.Sqrt(sumSq)

		if betaNew > o.normMin {
			inv := complex(1/betaNew, 0)
			vNew := ws.scratch2
			vNew.Zero()
			vNew.Axpy(rext[0]*inv, v)
			for i := 1; i <= m; i++ {
				vNew.Axpy(rext[i]*inv, basis[i])
			}
			vNew.Scale(complex(1/vNew.Norm(), 0))
			v.CopyFrom(vNew)
			beta = betaNew
		} else {
			beta = 0
		}

		converged := beta*cmplx.Abs(ws.coef[ws.nA-1])/(1+psi.Norm()) < o.relErr
		if converged {
			break
		}

		restart++
		if restart > o.maxRestarts {
			return ErrNotConverged
		}
	}

	ws.restarts = restart
	return nil
}

// applyShiftedMatVec computes dst[i] = sum_j (a.At(i,j) - shift*delta(i,j)) *
// src[j] / r for i in [0,rows), j in [0,cols). dst must not alias src.
func applyShiftedMatVec(dst, src []complex128, a *matx.Dense, shift complex128, r float64, rows, cols int) {
	invR := complex(1/r, 0)
	for i := 0; i < rows; i++ {
		var sum complex128
		for j := 0; j < cols; j++ {
			aij := a.At(i, j)
			if i == j {
				aij -= shift
			}
			sum += aij * src[j]
		}
		dst[i] = sum * invR
	}
}

