package arnoldi

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/fumin/qprop/matx"
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

func TestRunOrthonormalBasis(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(1))
	n, m := 8, 5
	h := randHermitian(rng, n)

	seed := qvec.NewDense(n)
	for i := range seed {
		seed[i] = complex(rng.Float64(), rng.Float64())
	}
	seed.Scale(complex(1/seed.Norm(), 0))

	basis := make([]qvec.Vector, m+1)
	for i := range basis {
		basis[i] = qvec.NewDense(n)
	}
	basis[0].CopyFrom(seed)

	hess := matx.New(m+1, m+1)
	res := Run(hess, basis, m, h, 1, true, 1e-14)
	if res.Breakdown {
		t.Fatalf("unexpected breakdown at M=%d", res.M)
	}

	for i := 0; i <= m; i++ {
		for j := 0; j <= m; j++ {
			got := basis[i].Dot(basis[j])
			want := complex(0, 0)
			if i == j {
				want = 1
			}
			if cmplx.Abs(got-want) > 1e-9 {
				t.Fatalf("basis[%d].basis[%d] = %v, want %v", i, j, got, want)
			}
		}
	}
}

func TestRunHessenbergProjection(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(2))
	n, m := 6, 4
	h := randHermitian(rng, n)

	seed := qvec.NewDense(n)
	seed[0] = 1

	basis := make([]qvec.Vector, m+1)
	for i := range basis {
		basis[i] = qvec.NewDense(n)
	}
	basis[0].CopyFrom(seed)

	hess := matx.New(m+1, m+1)
	dt := complex(0.5, 0)
	Run(hess, basis, m, h, dt, false, 1e-14)

	// H*dt*basis[j] should equal sum_i hess[i,j]*basis[i] for j < m-1. The
	// last column j = m-1 is skipped: its subdiagonal entry is the extended
	// component, which Run does not emit when extended=false.
	for j := 0; j < m-1; j++ {
		hv := qvec.NewDense(n)
		h.Apply(hv, basis[j])
		hv.Scale(dt)

		recon := qvec.NewDense(n)
		for i := 0; i <= j+1; i++ {
			recon.Axpy(hess.At(i, j), basis[i])
		}

		diff := qvec.NewDense(n)
		diff.CopyFrom(hv)
		diff.Axpy(-1, recon)
		if diff.Norm() > 1e-9 {
			t.Fatalf("column %d: H*dt*v != hess reconstruction, residual %v", j, diff.Norm())
		}
	}
}

func TestRunBreakdownOnInvariantSubspace(t *testing.T) {
	t.Parallel()
	// A diagonal operator: any standard basis vector is an eigenvector, so
	// Arnoldi must break down after a single step.
	n, m := 4, 3
	h := denseOp{
		{1, 0, 0, 0},
		{0, 2, 0, 0},
		{0, 0, 3, 0},
		{0, 0, 0, 4},
	}

	seed := qvec.NewDense(n)
	seed[0] = 1

	basis := make([]qvec.Vector, m+1)
	for i := range basis {
		basis[i] = qvec.NewDense(n)
	}
	basis[0].CopyFrom(seed)

	hess := matx.New(m+1, m+1)
	res := Run(hess, basis, m, h, 1, true, 1e-14)
	if !res.Breakdown {
		t.Fatalf("expected breakdown, got M=%d", res.M)
	}
	if res.M != 1 {
		t.Fatalf("expected breakdown at M=1, got %d", res.M)
	}
	if math.Abs(real(hess.At(0, 0))-1) > 1e-12 {
		t.Fatalf("%v", hess.At(0, 0))
	}
}
