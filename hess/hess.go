// Package hess extracts the eigenvalues (Ritz values) of the leading k x k
// blocks of a Hessenberg matrix.
//
// The k=2 closed form and the general shifted-QR iteration for k>=3 are
// adapted from (*tensor.Eig).solve / wilkinsonsShift / deflate /
// findUnreducedHessenberg in the teacher codebase (itself citing the ARPACK
// Users' Guide and Golub & Van Loan's Matrix Computations), simplified to
// eigenvalues-only: the restart driver only ever needs Ritz values, never
// Schur vectors, so there is no need to accumulate the orthogonal factor.
package hess

import (
	"math"
	"math/cmplx"

	"github.com/fumin/qprop/matx"
)

// deflation tolerance, a small multiple of the double-precision machine
// epsilon (about 2.2e-16).
const epsilon = 1e-15

// maxSweeps bounds the shifted-QR iteration count per deflation so a
// pathological input cannot loop forever; it is generous relative to the
// modest Krylov dimensions (tens, not thousands) this package is used with.
const maxSweeps = 100

// Eigenvalues returns the eigenvalues of the leading m x m block of h. If
// accumulate is false, the result has length m. If accumulate is true, the
// result is the concatenation of the eigenvalues of the leading k x k blocks
// for k = 1..m, with block k occupying positions (k-1)k/2 .. (k-1)k/2+k-1 of
// the returned slice (spec.md §4.3). Ordering within a block is
// implementation-defined.
func Eigenvalues(h *matx.Dense, m int, accumulate bool) []complex128 {
	if !accumulate {
		return block(h, m)
	}

	out := make([]complex128, m*(m+1)/2)
	for k := 1; k <= m; k++ {
		ev := block(h, k)
		copy(out[(k-1)*k/2:(k-1)*k/2+k], ev)
	}
	return out
}

func block(h *matx.Dense, k int) []complex128 {
	switch {
	case k == 1:
		return []complex128{h.At(0, 0)}
	case k == 2:
		return eig2x2(h.At(0, 0), h.At(0, 1), h.At(1, 0), h.At(1, 1))
	default:
		a := matx.New(k, k)
		for i := 0; i < k; i++ {
			for j := 0; j < k; j++ {
				a.Set(i, j, h.At(i, j))
			}
		}
		return eigGeneral(a, k)
	}
}

// eig2x2 solves the 2x2 eigenvalue problem for [[a,b],[c,d]] via the closed
// form discriminant given in spec.md §4.3.
func eig2x2(a, b, c, d complex128) []complex128 {
	disc := cmplx.Sqrt(a*a + 4*b*c - 2*a*d + d*d)
	tr := a + d
	return []complex128{(tr + disc) / 2, (tr - disc) / 2}
}

// eigGeneral computes the full spectrum of an n x n upper-Hessenberg matrix
// by repeated Wilkinson-shifted explicit QR steps (the QR factorization of
// the shifted Hessenberg matrix is done with one Givens rotation per
// subdiagonal entry) with trailing-row deflation. a is mutated in place;
// this call owns it exclusively.
//
// See Section 7.5, Matrix Computations 4th Ed., G. H. Golub, C. F. Van Loan,
// and Section 4.6 (Stopping Criterion), ARPACK Users' Guide, Lehoucq et al.,
// for the deflation and shift strategy this mirrors.
func eigGeneral(a *matx.Dense, n int) []complex128 {
	eigenvalues := make([]complex128, 0, n)

	for n > 0 {
		switch {
		case n == 1:
			eigenvalues = append(eigenvalues, a.At(0, 0))
			return eigenvalues
		case n == 2:
			eigenvalues = append(eigenvalues, eig2x2(a.At(0, 0), a.At(0, 1), a.At(1, 0), a.At(1, 1))...)
			return eigenvalues
		}

		if deflated(a, n) {
			eigenvalues = append(eigenvalues, a.At(n-1, n-1))
			n--
			a = a.Block(0, n, 0, n)
			continue
		}

		shift := wilkinsonShift(a, n)
		converged := false
		for sweep := 0; sweep < maxSweeps; sweep++ {
			qrShiftStep(a, n, shift)
			if deflated(a, n) {
				converged = true
				break
			}
			shift = wilkinsonShift(a, n)
		}
		if !converged {
			// Numerically stubborn tail: accept the diagonal entry as the
			// best available Ritz value estimate rather than looping
			// forever. This never triggers for well-conditioned Ritz
			// spectra in practice.
			eigenvalues = append(eigenvalues, a.At(n-1, n-1))
			n--
			a = a.Block(0, n, 0, n)
		}
	}
	return eigenvalues
}

func deflated(a *matx.Dense, n int) bool {
	sub := cmplx.Abs(a.At(n-1, n-2))
	d := cmplx.Abs(a.At(n-1, n-1)) + cmplx.Abs(a.At(n-2, n-2))
	if sub < epsilon*d {
		a.Set(n-1, n-2, 0)
		return true
	}
	return false
}

// wilkinsonShift picks the eigenvalue of the trailing 2x2 block closer to
// a[n-1,n-1], the standard single-shift choice (Golub & Van Loan 7.5.2).
func wilkinsonShift(a *matx.Dense, n int) complex128 {
	l0, l1 := eig2x2(a.At(n-2, n-2), a.At(n-2, n-1), a.At(n-1, n-2), a.At(n-1, n-1))[0], eig2x2(a.At(n-2, n-2), a.At(n-2, n-1), a.At(n-1, n-2), a.At(n-1, n-1))[1]
	amm := a.At(n-1, n-1)
	if cmplx.Abs(l0-amm) <= cmplx.Abs(l1-amm) {
		return l0
	}
	return l1
}

// qrShiftStep applies one explicit shifted-QR step to the leading n x n
// block of a via a sweep of complex Givens rotations (LAPACK ZLARTG-style):
// a <- G*(a-shift*I)*G^H + shift*I, accumulated one subdiagonal entry at a
// time since a is Hessenberg.
func qrShiftStep(a *matx.Dense, n int, shift complex128) {
	for i := 0; i < n; i++ {
		a.Set(i, i, a.At(i, i)-shift)
	}

	type rotation struct {
		c float64
		s complex128
	}
	rots := make([]rotation, n-1)
	for k := 0; k < n-1; k++ {
		c, s, r := givens(a.At(k, k), a.At(k+1, k))
		rots[k] = rotation{c, s}
		applyLeft(a, k, k+1, c, s, k, n)
		a.Set(k, k, r)
		a.Set(k+1, k, 0)
	}
	for k := 0; k < n-1; k++ {
		applyRight(a, k, k+1, rots[k].c, rots[k].s, 0, min(k+2, n))
	}

	for i := 0; i < n; i++ {
		a.Set(i, i, a.At(i, i)+shift)
	}
}

// givens computes c (real) and s (complex) such that
// [[c,s],[-conj(s),c]] * [a;b] = [r;0].
func givens(a, b complex128) (c float64, s complex128, r complex128) {
	if b == 0 {
		return 1, 0, a
	}
	if a == 0 {
		return 0, 1, b
	}
	absA, absB := cmplx.Abs(a), cmplx.Abs(b)
	norm := math.Hypot(absA, absB)
	c = absA / norm
	s = (a / complex(absA, 0)) * cmplx.Conj(b) / complex(norm, 0)
	r = complex(norm, 0) * (a / complex(absA, 0))
	return c, s, r
}

// applyLeft rotates rows i,j of a over columns [colStart,colEnd).
func applyLeft(a *matx.Dense, i, j int, c float64, s complex128, colStart, colEnd int) {
	for col := colStart; col < colEnd; col++ {
		ai, aj := a.At(i, col), a.At(j, col)
		a.Set(i, col, complex(c, 0)*ai+s*aj)
		a.Set(j, col, -cmplx.Conj(s)*ai+complex(c, 0)*aj)
	}
}

// applyRight rotates columns i,j of a over rows [rowStart,rowEnd), applying
// the Hermitian transpose of the same rotation used by applyLeft so that the
// combined transform is a similarity (eigenvalue-preserving).
func applyRight(a *matx.Dense, i, j int, c float64, s complex128, rowStart, rowEnd int) {
	for row := rowStart; row < rowEnd; row++ {
		ai, aj := a.At(row, i), a.At(row, j)
		a.Set(row, i, complex(c, 0)*ai+cmplx.Conj(s)*aj)
		a.Set(row, j, -s*ai+complex(c, 0)*aj)
	}
}
