// Package dense converts between tables and gonum matrices. Kernels built on
// gonum compute in float64 and convert float32 tables on the way in and out.
package dense

import (
	"github.com/born-ml/kernels/internal/tensor"
	"gonum.org/v1/gonum/mat"
)

// FromTable copies t into a new row-major gonum matrix. Packed tables are
// expanded to their full symmetric form.
func FromTable[F tensor.Float](t *tensor.Table) *mat.Dense {
	rows, cols := t.Rows(), t.Cols()
	if t.Layout() == tensor.RowMajor {
		src := tensor.TableData[F](t)
		data := make([]float64, len(src))
		for i, v := range src {
			data[i] = float64(v)
		}
		return mat.NewDense(rows, cols, data)
	}
	m := mat.NewDense(rows, cols, nil)
	for i := range rows {
		for j := range cols {
			m.Set(i, j, float64(tensor.At[F](t, i, j)))
		}
	}
	return m
}

// SymFromTable copies a square table into a symmetric matrix, reading the
// upper triangle.
func SymFromTable[F tensor.Float](t *tensor.Table) *mat.SymDense {
	n := t.Rows()
	s := mat.NewSymDense(n, nil)
	for i := range n {
		for j := i; j < n; j++ {
			s.SetSym(i, j, float64(tensor.At[F](t, i, j)))
		}
	}
	return s
}

// ToTable writes the leading rows x cols block of m into t.
func ToTable[F tensor.Float](m mat.Matrix, t *tensor.Table) {
	rows, cols := t.Rows(), t.Cols()
	if t.Layout() == tensor.RowMajor {
		dst := tensor.TableData[F](t)
		for i := range rows {
			row := dst[i*cols : (i+1)*cols]
			for j := range row {
				row[j] = F(m.At(i, j))
			}
		}
		return
	}
	for i := range rows {
		for j := range cols {
			if t.Layout() == tensor.UpperPacked && j < i {
				continue
			}
			if t.Layout() == tensor.LowerPacked && j > i {
				continue
			}
			tensor.SetAt[F](t, i, j, F(m.At(i, j)))
		}
	}
}

// VecToColumn writes v into the single column of t.
func VecToColumn[F tensor.Float](v []float64, t *tensor.Table) {
	dst := tensor.TableData[F](t)
	for i := range t.Rows() {
		dst[i] = F(v[i])
	}
}
