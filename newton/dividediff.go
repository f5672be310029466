// Package newton computes and extends Newton divided-difference coefficients
// for interpolating a scalar function at a Leja point sequence.
//
// There is no direct teacher analogue; the recurrence is the standard scaled
// divided-difference formula (Moret & Novati, "RD rational Krylov subspace
// methods ..." and the Newton-polynomial literature behind spec.md §4.5),
// written in the incremental, amortized style the rest of this module uses so
// that a restart only ever pays for the newly added Leja points.
package newton

import (
	"math/cmplx"

	"github.com/pkg/errors"
)

// breakdownThreshold below which a divided difference is considered to have
// collapsed to numerical zero, signalling that the interpolation node is (to
// machine precision) already represented by the existing polynomial.
const breakdownThreshold = 1e-200

// Extend grows coef (already holding nA valid Newton divided-difference
// coefficients referencing seq[0:nA]) to cover seq[0:nLeja], evaluating f at
// the newly added nodes seq[nA:nLeja]. r is the Leja sequence's fixed scaling
// radius. coef must have length >= nLeja.
//
// If nA == 0, coef[0] is seeded as f(seq[0]) and the recurrence starts from
// k=1; nLeja must then be >= 1.
func Extend(coef []complex128, nA int, seq []complex128, nLeja int, r float64, f func(complex128) complex128) error {
	if nA == 0 {
		coef[0] = f(seq[0])
		nA = 1
	}

	for k := nA; k < nLeja; k++ {
		var d complex128 = 1
		var p complex128
		for n := 1; n < k; n++ {
			d *= (seq[k] - seq[n-1]) / complex(r, 0)
			p += coef[n] * d
		}
		d *= (seq[k] - seq[k-1]) / complex(r, 0)

		if cmplx.Abs(d) <= breakdownThreshold {
			return errors.Errorf("newton: divided difference collapsed at node %d", k)
		}

		coef[k] = (f(seq[k]) - coef[0] - p) / d
	}

	return nil
}
