// SPDX-License-Identifier: MIT
// Package zstore: in-memory Dataset model (ordered dims + named variables).

package zstore

import "fmt"

// DType names an on-disk element encoding.
type DType string

const (
	// Float32 stores values as 4-byte IEEE-754 little-endian floats.
	Float32 DType = "float32"

	// Float64 stores values as 8-byte IEEE-754 little-endian floats.
	Float64 DType = "float64"
)

// size returns the element width in bytes, or 0 for unknown dtypes.
func (d DType) size() int {
	switch d {
	case Float32:
		return 4
	case Float64:
		return 8
	default:
		return 0
	}
}

// Dim is one named axis with a fixed length.
type Dim struct {
	Name   string `json:"name"`
	Length int    `json:"length"`
}

// Variable is one labeled array. Dims references dataset dimensions by
// name; a name may repeat (e.g. a pixel×pixel matrix). Values are always
// float64 in memory; DType controls on-disk precision only.
type Variable struct {
	Name   string
	Dims   []string
	DType  DType
	Values []float64
}

// Dataset is an ordered collection of named dimensions and variables.
// Construct with NewDataset, then AddDim and AddVariable; order of
// insertion is preserved on disk and on read-back.
type Dataset struct {
	dims []Dim
	vars []*Variable
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{}
}

// AddDim declares a named dimension. Lengths must be >= 1; duplicate names
// are rejected.
func (d *Dataset) AddDim(name string, length int) error {
	if length < 1 {
		return fmt.Errorf("zstore: dim %q length %d: %w", name, length, ErrBadVariable)
	}
	if _, ok := d.DimLen(name); ok {
		return fmt.Errorf("zstore: dim %q declared twice: %w", name, ErrBadVariable)
	}
	d.dims = append(d.dims, Dim{Name: name, Length: length})

	return nil
}

// DimLen returns the length of a named dimension, if declared.
func (d *Dataset) DimLen(name string) (int, bool) {
	for _, dim := range d.dims {
		if dim.Name == name {
			return dim.Length, true
		}
	}

	return 0, false
}

// Dims returns the declared dimensions in insertion order.
func (d *Dataset) Dims() []Dim {
	out := make([]Dim, len(d.dims))
	copy(out, d.dims)

	return out
}

// AddVariable attaches a labeled array to the dataset. Every referenced
// dimension must be declared, the value count must equal the product of
// the dimension lengths, and the dtype must be supported. The values slice
// is used directly (not copied).
func (d *Dataset) AddVariable(name string, dims []string, dtype DType, values []float64) error {
	if name == "" || len(dims) == 0 {
		return fmt.Errorf("zstore: variable %q needs a name and at least one dim: %w", name, ErrBadVariable)
	}
	if d.Var(name) != nil {
		return fmt.Errorf("zstore: variable %q declared twice: %w", name, ErrBadVariable)
	}
	if dtype.size() == 0 {
		return fmt.Errorf("zstore: variable %q dtype %q: %w", name, dtype, ErrBadDType)
	}

	want := 1
	for _, dn := range dims {
		n, ok := d.DimLen(dn)
		if !ok {
			return fmt.Errorf("zstore: variable %q references dim %q: %w", name, dn, ErrUnknownDim)
		}
		want *= n
	}
	if len(values) != want {
		return fmt.Errorf("zstore: variable %q has %d values, dims imply %d: %w",
			name, len(values), want, ErrBadVariable)
	}

	dimsCopy := make([]string, len(dims))
	copy(dimsCopy, dims)
	d.vars = append(d.vars, &Variable{Name: name, Dims: dimsCopy, DType: dtype, Values: values})

	return nil
}

// Var returns the named variable, or nil if absent.
func (d *Dataset) Var(name string) *Variable {
	for _, v := range d.vars {
		if v.Name == name {
			return v
		}
	}

	return nil
}

// Vars returns all variables in insertion order.
func (d *Dataset) Vars() []*Variable {
	out := make([]*Variable, len(d.vars))
	copy(out, d.vars)

	return out
}

// rowSize returns the number of elements in one slice along the variable's
// leading dimension, given the owning dataset.
func (d *Dataset) rowSize(v *Variable) int {
	size := 1
	for _, dn := range v.Dims[1:] {
		n, _ := d.DimLen(dn)
		size *= n
	}

	return size
}
