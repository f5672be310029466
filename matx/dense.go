// Package matx implements a small dense complex matrix with zero-copy
// sub-block views over a shared backing array, in the style of
// tensor.Dense.Slice in the teacher codebase this module is built from: a
// view shares storage with its parent, so extracting the leading k x k
// block of a Hessenberg matrix never allocates.
package matx

// Dense is a row-major dense complex128 matrix. Views created by Block share
// the backing array with their parent; mutating a view mutates the parent.
type Dense struct {
	rows, cols int
	stride     int
	off        int
	data       []complex128
}

// New allocates a zeroed rows x cols matrix.
func New(rows, cols int) *Dense {
	return &Dense{rows: rows, cols: cols, stride: cols, data: make([]complex128, rows*cols)}
}

// Rows returns the number of rows.
func (d *Dense) Rows() int { return d.rows }

// Cols returns the number of columns.
func (d *Dense) Cols() int { return d.cols }

// At returns the entry at (i,j).
func (d *Dense) At(i, j int) complex128 {
	return d.data[d.off+i*d.stride+j]
}

// Set writes the entry at (i,j).
func (d *Dense) Set(i, j int, v complex128) {
	d.data[d.off+i*d.stride+j] = v
}

// Zero sets every entry of the view to 0. Entries of the parent outside the
// view are untouched.
func (d *Dense) Zero() {
	for i := 0; i < d.rows; i++ {
		row := d.data[d.off+i*d.stride : d.off+i*d.stride+d.cols]
		clear(row)
	}
}

// Block returns a view onto the sub-block [r0,r1) x [c0,c1), sharing the
// backing array with d.
func (d *Dense) Block(r0, r1, c0, c1 int) *Dense {
	return &Dense{rows: r1 - r0, cols: c1 - c0, stride: d.stride, off: d.off + r0*d.stride + c0, data: d.data}
}
