// Package diskop implements a SQLite-backed sparse linear operator, for
// Hamiltonians too large to hold densely in memory.
//
// Adapted from mat.DiskMatrix in the teacher codebase: the same
// INSERT-OR-REPLACE/DELETE-on-zero storage scheme and database/sql +
// go-sqlite3 wiring, generalized from a dense-construction helper into a
// qvec.Operator whose Apply streams the matrix from disk for each matvec
// instead of requiring the whole operator to ever live in a Go slice.
package diskop

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/fumin/qprop/qvec"
)

const tableMatrix = "m"

// Op is a sparse complex128 matrix backed by a SQLite database, implementing
// qvec.Operator.
type Op struct {
	Path string
	rows int
	cols int

	db *sql.DB
}

// New creates (overwriting, if present) a SQLite-backed operator of shape
// rows x cols at dbPath.
func New(dbPath string, rows, cols int) (*Op, error) {
	db, err := newDB(dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "diskop: open")
	}
	return &Op{Path: dbPath, rows: rows, cols: cols, db: db}, nil
}

// Close closes the database handle and removes the backing file.
func (o *Op) Close() error {
	var err error
	if err1 := o.db.Close(); err1 != nil && err == nil {
		err = err1
	}
	if err1 := os.Remove(o.Path); err1 != nil && err == nil {
		err = err1
	}
	return err
}

// Rows reports the row count.
func (o *Op) Rows() int { return o.rows }

// Cols reports the column count.
func (o *Op) Cols() int { return o.cols }

// Set writes entry (i,j), deleting it from storage when v is exactly 0 so
// the on-disk representation stays sparse.
func (o *Op) Set(i, j int, v complex128) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return setItem(ctx, o.db, i, j, v)
}

// At reads entry (i,j), returning 0 for an entry never set.
func (o *Op) At(i, j int) (complex128, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`SELECT re, im FROM %s WHERE i=? AND j=?`, tableMatrix)
	var re, im float64
	err := o.db.QueryRowContext(ctx, sqlStr, i, j).Scan(&re, &im)
	switch {
	case err == sql.ErrNoRows:
		return 0, nil
	case err != nil:
		return 0, errors.Wrap(err, "diskop: at")
	default:
		return complex(re, im), nil
	}
}

// NumNonZero counts the stored (nonzero) entries.
func (o *Op) NumNonZero() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf("SELECT count(1) FROM %s", tableMatrix)
	var n int
	if err := o.db.QueryRowContext(ctx, sqlStr).Scan(&n); err != nil {
		return -1, errors.Wrap(err, "diskop: count")
	}
	return n, nil
}

// Apply implements qvec.Operator, streaming the stored entries from disk to
// compute dst <- H*src without ever materializing H densely in memory.
func (o *Op) Apply(dst, src qvec.Vector) {
	d := dst.(qvec.Dense)
	s := src.(qvec.Dense)
	d.Zero()

	ctx, cancel := context.WithTimeout(context.Background(), 48*time.Hour)
	defer cancel()
	sqlStr := fmt.Sprintf(`SELECT i, j, re, im FROM %s`, tableMatrix)
	rows, err := o.db.QueryContext(ctx, sqlStr)
	if err != nil {
		panic(fmt.Sprintf("diskop: apply: %+v", err))
	}
	defer rows.Close()

	for rows.Next() {
		var i, j int
		var re, im float64
		if err := rows.Scan(&i, &j, &re, &im); err != nil {
			panic(fmt.Sprintf("diskop: apply: %+v", err))
		}
		d[i] += complex(re, im) * s[j]
	}
	if err := rows.Err(); err != nil {
		panic(fmt.Sprintf("diskop: apply: %+v", err))
	}
}

func setItem(ctx context.Context, db *sql.DB, i, j int, v complex128) error {
	sqlStr := fmt.Sprintf(`INSERT OR REPLACE INTO %s (i, j, re, im) VALUES (?, ?, ?, ?)`, tableMatrix)
	args := []any{i, j, real(v), imag(v)}
	if v == 0 {
		sqlStr = fmt.Sprintf(`DELETE FROM %s WHERE i=? AND j=?`, tableMatrix)
		args = []any{i, j}
	}
	if _, err := db.ExecContext(ctx, sqlStr, args...); err != nil {
		return errors.Wrap(err, fmt.Sprintf("%s %#v", sqlStr, args))
	}
	return nil
}

func newDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", dbPath))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := prepareDB(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "")
	}
	return db, nil
}

func prepareDB(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`DROP TABLE IF EXISTS %s`, tableMatrix)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	sqlStr = fmt.Sprintf(`CREATE TABLE %s (i INTEGER, j INTEGER, re REAL, im REAL, PRIMARY KEY (i, j)) STRICT`, tableMatrix)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}
