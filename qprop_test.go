package qprop

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/fumin/qprop/qvec"
)

type denseOp [][]complex128

func (a denseOp) Apply(dst, src qvec.Vector) {
	d := dst.(qvec.Dense)
	s := src.(qvec.Dense)
	d.Zero()
	for i, row := range a {
		for j, v := range row {
			d[i] += v * s[j]
		}
	}
}

func TestPropagateZeroStepError(t *testing.T) {
	t.Parallel()
	psi := qvec.NewDense(2)
	psi[0] = 1
	h := denseOp{{1, 0}, {0, -1}}
	ws := NewWorkspace(psi, 4)
	if err := Propagate(psi, h, 0, ws); err != ErrZeroStep {
		t.Fatalf("%v", err)
	}
}

func TestPropagateShapeMismatch(t *testing.T) {
	t.Parallel()
	proto := qvec.NewDense(3)
	ws := NewWorkspace(proto, 2)
	psi := qvec.NewDense(4)
	h := denseOp{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}}
	if err := Propagate(psi, h, 1, ws); err != ErrShapeMismatch {
		t.Fatalf("%v", err)
	}
}

func TestWorkspaceClampsMMaxAtN1(t *testing.T) {
	t.Parallel()
	proto := qvec.NewDense(1)
	ws := NewWorkspace(proto, 10)
	if ws.mMax != 1 {
		t.Fatalf("%d", ws.mMax)
	}
}

func TestPropagateSingleDimension(t *testing.T) {
	t.Parallel()
	psi := qvec.NewDense(1)
	psi[0] = 2
	h := denseOp{{3}}
	ws := NewWorkspace(psi, 5)

	dt := complex(0.1, 0)
	if err := Propagate(psi, h, dt, ws); err != nil {
		t.Fatalf("%v", err)
	}
	want := cmplx.Exp(-1i*3*dt) * 2
	if cmplx.Abs(psi[0]-want) > 1e-9 {
		t.Fatalf("%v %v", psi[0], want)
	}
}

func TestPropagateDiagonalMatchesClosedForm(t *testing.T) {
	t.Parallel()
	h := denseOp{
		{1, 0, 0},
		{0, -2, 0},
		{0, 0, 0.5},
	}
	psi := qvec.NewDense(3)
	psi[0], psi[1], psi[2] = 1, 1i, 0.5

	ws := NewWorkspace(psi, 3)
	dt := complex(0.3, 0)
	if err := Propagate(psi, h, dt, ws); err != nil {
		t.Fatalf("%v", err)
	}

	want := []complex128{
		cmplx.Exp(-1i*1*dt) * 1,
		cmplx.Exp(-1i*-2*dt) * 1i,
		cmplx.Exp(-1i*0.5*dt) * 0.5,
	}
	for i, w := range want {
		if cmplx.Abs(psi[i]-w) > 1e-9 {
			t.Fatalf("%d: %v %v", i, psi[i], w)
		}
	}
}

func TestPropagateEigenvectorBreakdown(t *testing.T) {
	t.Parallel()
	// psi is already an exact eigenvector of h; Arnoldi should break down
	// at M=1 and Propagate must still produce the exact phase rotation.
	h := denseOp{
		{0, 1},
		{1, 0},
	}
	psi := qvec.NewDense(2)
	psi[0], psi[1] = 1/math.Sqrt2, 1/math.Sqrt2

	ws := NewWorkspace(psi, 4)
	dt := complex(0.7, 0)
	if err := Propagate(psi, h, dt, ws); err != nil {
		t.Fatalf("%v", err)
	}

	want := []complex128{
		cmplx.Exp(-1i*1*dt) * 1 / math.Sqrt2,
		cmplx.Exp(-1i*1*dt) * 1 / math.Sqrt2,
	}
	for i, w := range want {
		if cmplx.Abs(psi[i]-w) > 1e-8 {
			t.Fatalf("%d: %v %v", i, psi[i], w)
		}
	}
}

func TestPropagatePreservesNormForHermitian(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(7))
	n := 12
	h := randHermitian(rng, n)

	psi := qvec.NewDense(n)
	for i := range psi {
		psi[i] = complex(rng.Float64()*2-1, rng.Float64()*2-1)
	}
	beta := psi.Norm()
	psi.Scale(complex(1/beta, 0))

	ws := NewWorkspace(psi, 5)
	dt := complex(0.2, 0)
	if err := Propagate(psi, h, dt, ws); err != nil {
		t.Fatalf("%v", err)
	}

	got := psi.Norm()
	if math.Abs(got-1) > 1e-6 {
		t.Fatalf("norm drifted to %v", got)
	}
}

func TestPropagateMatchesReferenceExponential(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(11))
	n := 10
	h, sym := randRealSymmetric(rng, n)

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		t.Fatalf("EigenSym.Factorize failed")
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	vecs.EigenvectorsSym(&eig)

	psi0 := qvec.NewDense(n)
	for i := range psi0 {
		psi0[i] = complex(rng.Float64()*2-1, 0)
	}
	beta := psi0.Norm()
	psi0.Scale(complex(1/beta, 0))

	ws := NewWorkspace(psi0, 4)
	dt := complex(0.15, 0)
	psi := qvec.NewDense(n)
	psi.CopyFrom(psi0)
	if err := Propagate(psi, h, dt, ws); err != nil {
		t.Fatalf("%v", err)
	}

	// Reference: f(H*dt)*psi0 = V * diag(exp(-i*lambda*dt)) * V^T * psi0.
	want := make([]complex128, n)
	for k := 0; k < n; k++ {
		var proj complex128
		for j := 0; j < n; j++ {
			proj += complex(vecs.At(j, k), 0) * psi0[j]
		}
		phase := cmplx.Exp(-1i * complex(vals[k], 0) * dt)
		for i := 0; i < n; i++ {
			want[i] += complex(vecs.At(i, k), 0) * phase * proj
		}
	}

	var residual float64
	for i := range want {
		d := psi[i] - want[i]
		residual += real(d)*real(d) + imag(d)*imag(d)
	}
	if math.Sqrt(residual) > 1e-6 {
		t.Fatalf("propagated state diverges from reference: residual=%v", math.Sqrt(residual))
	}
}

func randHermitian(rng *rand.Rand, n int) denseOp {
	a := make(denseOp, n)
	for i := range a {
		a[i] = make([]complex128, n)
	}
	for i := 0; i < n; i++ {
		a[i][i] = complex(rng.Float64()*2-1, 0)
		for j := i + 1; j < n; j++ {
			v := complex(rng.Float64()*2-1, rng.Float64()*2-1)
			a[i][j] = v
			a[j][i] = cmplx.Conj(v)
		}
	}
	return a
}

// randRealSymmetric returns the same matrix both as a qvec.Operator (complex
// entries, zero imaginary part) and as a gonum SymDense, so that gonum's
// EigenSym can serve as an independent reference oracle.
func randRealSymmetric(rng *rand.Rand, n int) (denseOp, *mat.SymDense) {
	data := make([]float64, n*n)
	a := make(denseOp, n)
	for i := range a {
		a[i] = make([]complex128, n)
	}
	for i := 0; i < n; i++ {
		v := rng.Float64()*2 - 1
		a[i][i] = complex(v, 0)
		data[i*n+i] = v
		for j := i + 1; j < n; j++ {
			v := rng.Float64()*2 - 1
			a[i][j] = complex(v, 0)
			a[j][i] = complex(v, 0)
			data[i*n+j] = v
			data[j*n+i] = v
		}
	}
	return a, mat.NewSymDense(n, data)
}
