// Package leja greedily selects Leja-ordered interpolation points from a
// candidate set of Ritz values.
//
// The selection maximizes, at each step, the product of distances to the
// points already chosen, which is the defining property of a Leja sequence
// and keeps the Newton interpolant in the following package numerically
// well-conditioned over many restarts. There is no teacher analogue for this
// combinatorial routine; it is written in the same allocation-free,
// in-place style as the rest of this module's hot path (compare
// (*tensor.Arnoldi).gramSchimdt, which also avoids intermediate slices).
package leja

import (
	"math"
	"math/cmplx"
)

// Select appends up to nUse points from candidates to seq, starting at
// seq[n], greedily maximizing the product of distances to all points already
// in seq[0:n] (and to points appended earlier in this same call). It returns
// the number of points actually appended.
//
// seq must have capacity for at least n+nUse entries; candidates is consumed
// destructively: selected entries are removed from the working set by
// swapping with the last live candidate, so the portion of candidates beyond
// the returned usable length is left in an unspecified order. Pass a copy if
// the caller needs candidates preserved.
//
// If n == 0, the first point is chosen as the candidate of largest modulus,
// since a product of distances over an empty set is vacuously 1 for every
// candidate and ties must be broken somehow (spec.md §4.4).
func Select(seq []complex128, n int, candidates []complex128, nUse int) int {
	numCand := len(candidates)
	appended := 0

	// Fixed once per call: the exponent e=1/(n+nUse) keeps the product from
	// over/underflowing as more points accumulate, without needing a
	// running logarithm.
	e := 1.0 / float64(n+nUse)

	for appended < nUse && numCand > 0 {
		var best int
		if n == 0 && appended == 0 {
			best = argmaxAbs(candidates[:numCand])
		} else {
			best = argmaxProduct(candidates[:numCand], seq[:n], e)
		}

		seq[n] = candidates[best]
		n++
		appended++

		numCand--
		candidates[best] = candidates[numCand]
	}

	return appended
}

func argmaxAbs(candidates []complex128) int {
	best := 0
	bestAbs := cmplx.Abs(candidates[0])
	for i := 1; i < len(candidates); i++ {
		a := cmplx.Abs(candidates[i])
		if a > bestAbs {
			bestAbs = a
			best = i
		}
	}
	return best
}

func argmaxProduct(candidates, chosen []complex128, e float64) int {
	best := 0
	bestP := product(candidates[0], chosen, e)
	for i := 1; i < len(candidates); i++ {
		p := product(candidates[i], chosen, e)
		if p > bestP {
			bestP = p
			best = i
		}
	}
	return best
}

func product(z complex128, chosen []complex128, e float64) float64 {
	p := 1.0
	for _, c := range chosen {
		p *= math.Pow(cmplx.Abs(z-c), e)
	}
	return p
}
