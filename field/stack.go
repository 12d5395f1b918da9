// SPDX-License-Identifier: MIT
// Package field: Stack is the concrete example×row×column container.
// Storage is one flat slice in example-major, row-major order, so the
// 2-D flattening used by the MCA engine is a straight reinterpretation.

package field

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Stack is a dense stack of examples grids, each rows×cols, of float64.
// The zero value is not usable; construct via NewStack or NewStackFrom.
type Stack struct {
	e, r, c int       // examples, grid rows, grid columns
	data    []float64 // flat backing storage, length == e*r*c
}

// NewStack creates an examples×rows×cols stack initialized to zeros.
// Complexity: O(e·r·c) time and memory.
func NewStack(examples, rows, cols int) (*Stack, error) {
	if examples < 1 || rows < 1 || cols < 1 {
		return nil, fmt.Errorf("NewStack(%d,%d,%d): %w", examples, rows, cols, ErrBadShape)
	}

	return &Stack{
		e:    examples,
		r:    rows,
		c:    cols,
		data: make([]float64, examples*rows*cols),
	}, nil
}

// NewStackFrom wraps an existing flat slice as an examples×rows×cols stack.
// The slice is used directly (not copied); it must hold exactly e·r·c
// elements in example-major, row-major order.
func NewStackFrom(data []float64, examples, rows, cols int) (*Stack, error) {
	if examples < 1 || rows < 1 || cols < 1 {
		return nil, fmt.Errorf("NewStackFrom(%d,%d,%d): %w", examples, rows, cols, ErrBadShape)
	}
	if len(data) != examples*rows*cols {
		return nil, fmt.Errorf("NewStackFrom: have %d values for shape (%d,%d,%d): %w",
			len(data), examples, rows, cols, ErrLengthMismatch)
	}

	return &Stack{e: examples, r: rows, c: cols, data: data}, nil
}

// Examples returns the length of the example axis.
func (s *Stack) Examples() int { return s.e }

// Rows returns the number of grid rows.
func (s *Stack) Rows() int { return s.r }

// Cols returns the number of grid columns.
func (s *Stack) Cols() int { return s.c }

// Pixels returns rows·cols, the flattened spatial size of one grid.
func (s *Stack) Pixels() int { return s.r * s.c }

// Raw returns the flat backing slice. The slice is shared with the stack:
// mutations are visible both ways. Intended for serialization and for
// in-place standardization by the engine.
func (s *Stack) Raw() []float64 { return s.data }

// indexOf computes the flat offset for (example, row, col) or returns
// ErrOutOfRange. Complexity: O(1).
func (s *Stack) indexOf(example, row, col int) (int, error) {
	if example < 0 || example >= s.e || row < 0 || row >= s.r || col < 0 || col >= s.c {
		return 0, fmt.Errorf("Stack.At(%d,%d,%d) with shape (%d,%d,%d): %w",
			example, row, col, s.e, s.r, s.c, ErrOutOfRange)
	}

	return (example*s.r+row)*s.c + col, nil
}

// At retrieves the value at (example, row, col).
func (s *Stack) At(example, row, col int) (float64, error) {
	idx, err := s.indexOf(example, row, col)
	if err != nil {
		return 0, err
	}

	return s.data[idx], nil
}

// Set assigns v at (example, row, col).
func (s *Stack) Set(example, row, col int, v float64) error {
	idx, err := s.indexOf(example, row, col)
	if err != nil {
		return err
	}
	s.data[idx] = v

	return nil
}

// Clone returns a deep copy of the stack.
func (s *Stack) Clone() *Stack {
	cp := make([]float64, len(s.data))
	copy(cp, s.data)

	return &Stack{e: s.e, r: s.r, c: s.c, data: cp}
}

// Subsample returns a new stack keeping every stride-th row and column,
// starting at index 0, on every example grid. The output spatial extents
// are ceil(rows/stride) × ceil(cols/stride). stride must be >= 1.
// Complexity: O(output size).
func (s *Stack) Subsample(stride int) (*Stack, error) {
	if stride < 1 {
		return nil, fmt.Errorf("Stack.Subsample(%d): %w", stride, ErrBadStride)
	}
	if stride == 1 {
		return s.Clone(), nil
	}

	outR := (s.r + stride - 1) / stride
	outC := (s.c + stride - 1) / stride
	out := make([]float64, s.e*outR*outC)

	var idx int
	for e := 0; e < s.e; e++ {
		base := e * s.r * s.c
		for r := 0; r < s.r; r += stride {
			rowBase := base + r*s.c
			for c := 0; c < s.c; c += stride {
				out[idx] = s.data[rowBase+c]
				idx++
			}
		}
	}

	return &Stack{e: s.e, r: outR, c: outC, data: out}, nil
}

// Append concatenates other onto s along the example axis and returns the
// combined stack. Both stacks must share the same spatial shape; example
// order is preserved (all of s first, then all of other).
// Complexity: O(total size).
func (s *Stack) Append(other *Stack) (*Stack, error) {
	if s.r != other.r || s.c != other.c {
		return nil, fmt.Errorf("Stack.Append: spatial shapes (%d,%d) vs (%d,%d): %w",
			s.r, s.c, other.r, other.c, ErrShapeMismatch)
	}

	out := make([]float64, 0, len(s.data)+len(other.data))
	out = append(out, s.data...)
	out = append(out, other.data...)

	return &Stack{e: s.e + other.e, r: s.r, c: s.c, data: out}, nil
}

// Flatten returns the stack as a freshly allocated E×(R·C) gonum matrix.
// Row i of the result is example i's grid in row-major order.
func (s *Stack) Flatten() *mat.Dense {
	cp := make([]float64, len(s.data))
	copy(cp, s.data)

	return mat.NewDense(s.e, s.r*s.c, cp)
}

// Divide returns num/den elementwise. Any non-finite quotient (division by
// zero, 0/0, NaN or Inf propagated from either operand) is replaced with
// exactly 0. This masking is the documented numerical-stability rule for
// deriving normalized predictor fields, not an error condition.
// Both stacks must share the full (E,R,C) shape.
func Divide(num, den *Stack) (*Stack, error) {
	if num.e != den.e || num.r != den.r || num.c != den.c {
		return nil, fmt.Errorf("field.Divide: shapes (%d,%d,%d) vs (%d,%d,%d): %w",
			num.e, num.r, num.c, den.e, den.r, den.c, ErrShapeMismatch)
	}

	out := make([]float64, len(num.data))
	for i, v := range num.data {
		q := v / den.data[i]
		if math.IsNaN(q) || math.IsInf(q, 0) {
			q = 0
		}
		out[i] = q
	}

	return &Stack{e: num.e, r: num.r, c: num.c, data: out}, nil
}
