package tensor

import "fmt"

// Layout describes how a table's elements are stored. Layouts are bit flags so
// validators can express sets of unexpected layouts as a mask.
type Layout uint32

// Table layouts.
const (
	RowMajor Layout = 1 << iota
	UpperPacked
	LowerPacked
)

// PackedMask matches both packed triangular layouts.
const PackedMask = UpperPacked | LowerPacked

// String returns the layout name.
func (l Layout) String() string {
	switch l {
	case RowMajor:
		return "row-major"
	case UpperPacked:
		return "upper-packed"
	case LowerPacked:
		return "lower-packed"
	default:
		return fmt.Sprintf("layout(%d)", uint32(l))
	}
}

// Table is a 2-D data object: rows are observations, columns are features or
// responses. Packed layouts store only one triangle of a square matrix.
type Table struct {
	raw    *RawTensor
	rows   int
	cols   int
	layout Layout
}

// NewTable creates a zero-initialized table.
func NewTable(rows, cols int, layout Layout, dtype DataType) (*Table, error) {
	n, err := storageSize(rows, cols, layout)
	if err != nil {
		return nil, err
	}
	raw, err := NewRaw(Shape{n}, dtype)
	if err != nil {
		return nil, err
	}
	return &Table{raw: raw, rows: rows, cols: cols, layout: layout}, nil
}

// TableFromSlice creates a row-major table holding a copy of data.
func TableFromSlice[F Float](data []F, rows, cols int) (*Table, error) {
	if rows*cols != len(data) {
		return nil, fmt.Errorf("table %dx%d requires %d elements, but got %d", rows, cols, rows*cols, len(data))
	}
	t, err := NewTable(rows, cols, RowMajor, DataTypeOf[F]())
	if err != nil {
		return nil, err
	}
	copy(TableData[F](t), data)
	return t, nil
}

func storageSize(rows, cols int, layout Layout) (int, error) {
	if rows <= 0 || cols <= 0 {
		return 0, fmt.Errorf("invalid table dimensions %dx%d", rows, cols)
	}
	switch layout {
	case RowMajor:
		return rows * cols, nil
	case UpperPacked, LowerPacked:
		if rows != cols {
			return 0, fmt.Errorf("%s table must be square, got %dx%d", layout, rows, cols)
		}
		return rows * (rows + 1) / 2, nil
	default:
		return 0, fmt.Errorf("unsupported layout %s", layout)
	}
}

// Shape returns [rows, cols].
func (t *Table) Shape() Shape {
	return Shape{t.rows, t.cols}
}

// DType returns the table's precision.
func (t *Table) DType() DataType {
	return t.raw.dtype
}

// Rows returns the number of rows.
func (t *Table) Rows() int {
	return t.rows
}

// Cols returns the number of columns.
func (t *Table) Cols() int {
	return t.cols
}

// Layout returns the storage layout.
func (t *Table) Layout() Layout {
	return t.layout
}

// Raw returns the backing storage.
func (t *Table) Raw() *RawTensor {
	return t.raw
}

// TableData returns the table's backing storage as a typed slice.
func TableData[F Float](t *Table) []F {
	return Data[F](t.raw)
}

// index maps (i, j) to the storage offset. For packed layouts either triangle
// may be addressed; the symmetric element is returned.
func (t *Table) index(i, j int) int {
	switch t.layout {
	case UpperPacked:
		if i > j {
			i, j = j, i
		}
		// Row i of the upper triangle starts after rows 0..i-1.
		return i*t.cols - i*(i-1)/2 + (j - i)
	case LowerPacked:
		if j > i {
			i, j = j, i
		}
		return i*(i+1)/2 + j
	default:
		return i*t.cols + j
	}
}

// At returns element (i, j).
func At[F Float](t *Table, i, j int) F {
	return TableData[F](t)[t.index(i, j)]
}

// SetAt stores v at (i, j).
func SetAt[F Float](t *Table, i, j int, v F) {
	TableData[F](t)[t.index(i, j)] = v
}
