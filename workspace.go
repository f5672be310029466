package qprop

import (
	"github.com/fumin/qprop/matx"
	"github.com/fumin/qprop/qvec"
)

// Workspace holds every buffer a Propagate call needs, preallocated once and
// reused across calls: the Krylov basis, the Hessenberg projection, and the
// growing Leja-point/Newton-coefficient arrays. Reusing a Workspace across
// many Propagate calls on vectors of the same shape avoids repeated
// allocation on the hot path, the same role (*tensor.Arnoldi) plays for a
// single call in the teacher codebase, generalized here to persist across
// restarts and across calls.
type Workspace struct {
	n    int
	mMax int

	basis            []qvec.Vector
	scratch          qvec.Vector
	scratch2         qvec.Vector
	hess             *matx.Dense
	leja, coef       []complex128
	nA, nLeja        int
	radius           float64
	restarts         int
	rbuf, rtmp, pbuf []complex128
}

// NewWorkspace preallocates a Workspace for vectors shaped like proto, with
// a restart dimension of at most mMax. mMax is clamped to [1, n-1] (spec.md
// §3's m_max < N requirement), with a floor of 1 so that even a 1-dimensional
// state admits a (trivial) single Arnoldi step.
func NewWorkspace(proto qvec.Vector, mMax int) *Workspace {
	n := proto.Len()
	if mMax >= n {
		mMax = n - 1
	}
	if mMax < 1 {
		mMax = 1
	}

	basis := make([]qvec.Vector, mMax+1)
	for i := range basis {
		basis[i] = proto.Like()
	}

	cap0 := 10*mMax + 1
	return &Workspace{
		n:        n,
		mMax:     mMax,
		basis:    basis,
		scratch:  proto.Like(),
		scratch2: proto.Like(),
		hess:     matx.New(mMax+1, mMax+1),
		leja:     make([]complex128, cap0),
		coef:     make([]complex128, cap0),
		rbuf:     make([]complex128, mMax+1),
		rtmp:     make([]complex128, mMax+1),
		pbuf:     make([]complex128, mMax+1),
	}
}

// Restarts reports the number of Arnoldi restarts the most recent Propagate
// call performed.
func (w *Workspace) Restarts() int { return w.restarts }

// NLeja reports the number of Leja points accumulated by the most recent
// Propagate call.
func (w *Workspace) NLeja() int { return w.nLeja }

// NA reports the number of valid Newton coefficients held after the most
// recent Propagate call.
func (w *Workspace) NA() int { return w.nA }

// Radius reports the Newton interpolation scaling radius chosen by the most
// recent Propagate call.
func (w *Workspace) Radius() float64 { return w.radius }

func (w *Workspace) reset() {
	clear(w.leja)
	clear(w.coef)
	w.nA = 0
	w.nLeja = 0
	w.radius = 0
	w.restarts = 0
}

// ensureLejaCap grows leja and coef together so that both have capacity for
// at least need entries, preserving the n_a == n_leja invariant the two
// arrays share at quiescent points between restarts. Growth is amortized
// O(1) per element via a doubling policy.
func (w *Workspace) ensureLejaCap(need int) {
	if need <= len(w.leja) {
		return
	}
	newCap := 2 * need
	leja := make([]complex128, newCap)
	coef := make([]complex128, newCap)
	copy(leja, w.leja[:w.nLeja])
	copy(coef, w.coef[:w.nA])
	w.leja = leja
	w.coef = coef
}
