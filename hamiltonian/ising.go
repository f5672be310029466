// Package hamiltonian builds example qvec.Operator instances out of
// sparse, coordinate-format matrices, adapting the COO type in
// exactdiag/mat/mat.go from the teacher codebase (complex64, float32-tagged
// amplitude format) to complex128 and wiring it into the qvec.Operator
// contract instead of the teacher's standalone Matrix interface.
package hamiltonian

import (
	"math"
	"slices"

	"github.com/pkg/errors"

	"github.com/fumin/qprop/qvec"
)

// entry is one nonzero of a coordinate-format sparse matrix.
type entry struct {
	v        complex128
	row, col int
}

// COO is a sparse complex128 matrix in coordinate format, built up via Kron
// and Add the way exactdiag/mat.COO is in the teacher codebase.
type COO struct {
	rows, cols int
	data       []entry
	m          map[[2]int]complex128
}

func identity(n int) *COO {
	c := &COO{rows: n, cols: n, m: make(map[[2]int]complex128)}
	for i := 0; i < n; i++ {
		c.data = append(c.data, entry{v: 1, row: i, col: i})
	}
	return c
}

func scalar(v complex128) *COO {
	return &COO{rows: 1, cols: 1, data: []entry{{v: v}}, m: make(map[[2]int]complex128)}
}

// Kron replaces the receiver with its Kronecker product with b.
func (a *COO) Kron(b *COO) {
	rows, cols := a.rows*b.rows, a.cols*b.cols
	out := make([]entry, 0, len(a.data)*len(b.data))
	for _, av := range a.data {
		for _, bv := range b.data {
			out = append(out, entry{
				v:   av.v * bv.v,
				row: av.row*b.rows + bv.row,
				col: av.col*b.cols + bv.col,
			})
		}
	}
	a.rows, a.cols, a.data = rows, cols, out
}

// Add computes a <- a + c*b, where b must be 1x1, have a's row shape with
// one column, or have a's exact shape. A 1x1 b is added at entry (0,0) only
// and a one-column b is added into column 0 only; neither is broadcast.
func (a *COO) Add(c complex128, b *COO) {
	clear(a.m)
	for _, v := range a.data {
		a.m[[2]int{v.row, v.col}] += v.v
	}
	for _, v := range b.data {
		var row, col int
		switch {
		case b.rows == 1 && b.cols == 1:
		case b.rows == a.rows && b.cols == 1:
			row = v.row
		default:
			row, col = v.row, v.col
		}
		a.m[[2]int{row, col}] += c * v.v
	}

	a.data = a.data[:0]
	for yx, v := range a.m {
		if v == 0 {
			continue
		}
		a.data = append(a.data, entry{v: v, row: yx[0], col: yx[1]})
	}
	clear(a.m)
}

// Rows reports the row count.
func (a *COO) Rows() int { return a.rows }

// Cols reports the column count.
func (a *COO) Cols() int { return a.cols }

// Apply implements qvec.Operator, applying the sparse matrix as a matvec.
func (a *COO) Apply(dst, src qvec.Vector) {
	d := dst.(qvec.Dense)
	s := src.(qvec.Dense)
	d.Zero()
	for _, v := range a.data {
		d[v.row] += v.v * s[v.col]
	}
}

// Pauli matrices used to build spin-lattice Hamiltonians.
var (
	pauliX = &COO{rows: 2, cols: 2, m: map[[2]int]complex128{}, data: []entry{
		{v: 1, row: 0, col: 1}, {v: 1, row: 1, col: 0},
	}}
	pauliZ = &COO{rows: 2, cols: 2, m: map[[2]int]complex128{}, data: []entry{
		{v: 1, row: 0, col: 0}, {v: -1, row: 1, col: 1},
	}}
)

// TransverseFieldIsing builds the transverse-field Ising Hamiltonian on an
// n[0] x n[1] lattice with open boundary conditions and transverse field
// strength h:
//
//	H = -sum_{<i,j>} Z_i Z_j - h * sum_i X_i
//
// adapted from (qising.TransverseFieldIsing) in the teacher codebase, which
// builds the same operator as a sum of Kronecker products of Pauli matrices
// but at complex64 precision via the (now-broken, externally referenced)
// package-level Matrix type; here the Kronecker construction is rebuilt
// directly against the COO type above.
func TransverseFieldIsing(n [2]int, h float64) *COO {
	numSpins := n[0] * n[1]
	dim := 1 << numSpins
	out := &COO{rows: dim, cols: dim, m: make(map[[2]int]complex128)}

	for y := 0; y < n[0]; y++ {
		for x := 0; x < n[1]; x++ {
			if up := y - 1; up >= 0 {
				out.Add(-1, coupling(n, [2]int{up, x}, [2]int{y, x}))
			}
			if left := x - 1; left >= 0 {
				out.Add(-1, coupling(n, [2]int{y, left}, [2]int{y, x}))
			}
			out.Add(complex(-h, 0), magnetic(n, [2]int{y, x}))
		}
	}
	return out
}

func coupling(n [2]int, i, j [2]int) *COO {
	sys := scalar(1)
	for y := 0; y < n[0]; y++ {
		for x := 0; x < n[1]; x++ {
			yx := [2]int{y, x}
			if yx == i || yx == j {
				sys.Kron(pauliZ)
			} else {
				sys.Kron(identity(2))
			}
		}
	}
	return sys
}

func magnetic(n [2]int, i [2]int) *COO {
	sys := scalar(1)
	for y := 0; y < n[0]; y++ {
		for x := 0; x < n[1]; x++ {
			yx := [2]int{y, x}
			if yx == i {
				sys.Kron(pauliX)
			} else {
				sys.Kron(identity(2))
			}
		}
	}
	return sys
}

// Magnetization computes the mean absolute per-spin magnetization of state,
// adapted from qising.Magnetization in the teacher codebase.
func Magnetization(n [2]int, state qvec.Dense) (float64, error) {
	numSpins := n[0] * n[1]
	if len(state) != 1<<numSpins {
		return math.NaN(), errors.Errorf("hamiltonian: state length %d does not match %d spins", len(state), numSpins)
	}

	var totalProb, meanM float64
	for i, amplitude := range state {
		probability := real(amplitude)*real(amplitude) + imag(amplitude)*imag(amplitude)

		var basisM float64
		for s := 0; s < numSpins; s++ {
			if i&(1<<s) != 0 {
				basisM++
			} else {
				basisM--
			}
		}
		basisM = math.Abs(basisM)

		totalProb += probability
		meanM += probability * basisM
	}
	if math.Abs(totalProb-1) > 1e-3 {
		meanM /= totalProb
	}

	return meanM / float64(numSpins), nil
}

// Dense materializes the full dim x dim matrix, for use by reference
// diagonalization in tests. It is not intended for production-size lattices.
func (a *COO) Dense() [][]complex128 {
	out := make([][]complex128, a.rows)
	for i := range out {
		out[i] = make([]complex128, a.cols)
	}
	for _, v := range a.data {
		out[v.row][v.col] = v.v
	}
	return out
}

// sortedData returns a's entries sorted in row-major order, for callers
// that need deterministic iteration. No test currently calls it.
func (a *COO) sortedData() []entry {
	out := slices.Clone(a.data)
	slices.SortFunc(out, func(x, y entry) int {
		if x.row != y.row {
			return x.row - y.row
		}
		return x.col - y.col
	})
	return out
}
