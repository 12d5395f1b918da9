// SPDX-License-Identifier: MIT
// Package zstore: on-disk codec. Metadata is one JSON document; each
// variable's values live in raw little-endian chunk files split along the
// leading dimension.

package zstore

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
)

// metaFileName is the store's single metadata document.
const metaFileName = ".zmeta.json"

// formatVersion guards future layout changes.
const formatVersion = 1

// DefaultChunkRows is the default number of leading-dimension slices per
// chunk file.
const DefaultChunkRows = 256

// WriteOptions tunes Write. The zero value selects defaults.
type WriteOptions struct {
	// ChunkRows is the number of leading-dimension slices per chunk file;
	// values < 1 select DefaultChunkRows.
	ChunkRows int
}

// metaDoc is the serialized form of a Dataset's structure.
type metaDoc struct {
	FormatVersion int       `json:"format_version"`
	Dims          []Dim     `json:"dims"`
	Vars          []metaVar `json:"vars"`
}

type metaVar struct {
	Name      string   `json:"name"`
	Dims      []string `json:"dims"`
	DType     DType    `json:"dtype"`
	ChunkRows int      `json:"chunk_rows"`
}

// Write persists the dataset at path, replacing any pre-existing store.
// Semantics are remove-then-recreate: the old tree is deleted up front and,
// if any step fails, the partially written tree is deleted too, so callers
// never observe a half-written store.
func Write(path string, ds *Dataset, opts WriteOptions) (err error) {
	chunkRows := opts.ChunkRows
	if chunkRows < 1 {
		chunkRows = DefaultChunkRows
	}

	if err = os.RemoveAll(path); err != nil {
		return fmt.Errorf("zstore: clearing %s: %w", path, err)
	}
	if err = os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("zstore: creating %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(path) // never leave a partial store behind
		}
	}()

	doc := metaDoc{FormatVersion: formatVersion, Dims: ds.Dims()}
	for _, v := range ds.vars {
		doc.Vars = append(doc.Vars, metaVar{
			Name: v.Name, Dims: v.Dims, DType: v.DType, ChunkRows: chunkRows,
		})
		if err = writeVariable(path, ds, v, chunkRows); err != nil {
			return err
		}
	}

	blob, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return fmt.Errorf("zstore: encoding metadata: %w", err)
	}
	if err = os.WriteFile(filepath.Join(path, metaFileName), blob, 0o644); err != nil {
		return fmt.Errorf("zstore: writing metadata: %w", err)
	}

	return nil
}

// writeVariable emits one chunk file per chunkRows leading-dimension slices.
func writeVariable(root string, ds *Dataset, v *Variable, chunkRows int) error {
	dir := filepath.Join(root, v.Name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("zstore: creating variable dir %s: %w", dir, err)
	}

	leading, _ := ds.DimLen(v.Dims[0])
	rowSize := ds.rowSize(v)

	for chunk, start := 0, 0; start < leading; chunk, start = chunk+1, start+chunkRows {
		end := start + chunkRows
		if end > leading {
			end = leading
		}
		vals := v.Values[start*rowSize : end*rowSize]

		blob, err := encode(vals, v.DType)
		if err != nil {
			return fmt.Errorf("zstore: variable %q: %w", v.Name, err)
		}
		name := filepath.Join(dir, strconv.Itoa(chunk))
		if err := os.WriteFile(name, blob, 0o644); err != nil {
			return fmt.Errorf("zstore: writing chunk %s: %w", name, err)
		}
	}

	return nil
}

// Read loads a store written by Write, returning all values as float64.
func Read(path string) (*Dataset, error) {
	blob, err := os.ReadFile(filepath.Join(path, metaFileName))
	if err != nil {
		return nil, fmt.Errorf("zstore: reading %s: %w", path, ErrNotStore)
	}

	var doc metaDoc
	if err := json.Unmarshal(blob, &doc); err != nil {
		return nil, fmt.Errorf("zstore: parsing metadata in %s: %w", path, ErrNotStore)
	}

	ds := NewDataset()
	for _, dim := range doc.Dims {
		if err := ds.AddDim(dim.Name, dim.Length); err != nil {
			return nil, err
		}
	}

	for _, mv := range doc.Vars {
		vals, err := readVariable(path, ds, mv)
		if err != nil {
			return nil, err
		}
		if err := ds.AddVariable(mv.Name, mv.Dims, mv.DType, vals); err != nil {
			return nil, err
		}
	}

	return ds, nil
}

// readVariable reassembles one variable from its chunk files.
func readVariable(root string, ds *Dataset, mv metaVar) ([]float64, error) {
	if mv.DType.size() == 0 {
		return nil, fmt.Errorf("zstore: variable %q dtype %q: %w", mv.Name, mv.DType, ErrBadDType)
	}

	total := 1
	for _, dn := range mv.Dims {
		n, ok := ds.DimLen(dn)
		if !ok {
			return nil, fmt.Errorf("zstore: variable %q references dim %q: %w", mv.Name, dn, ErrUnknownDim)
		}
		total *= n
	}

	chunkRows := mv.ChunkRows
	if chunkRows < 1 {
		chunkRows = DefaultChunkRows
	}
	leading, _ := ds.DimLen(mv.Dims[0])
	rowSize := total / leading

	vals := make([]float64, 0, total)
	for chunk, start := 0, 0; start < leading; chunk, start = chunk+1, start+chunkRows {
		end := start + chunkRows
		if end > leading {
			end = leading
		}
		name := filepath.Join(root, mv.Name, strconv.Itoa(chunk))
		blob, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("zstore: reading chunk %s: %w", name, err)
		}

		want := (end - start) * rowSize * mv.DType.size()
		if len(blob) != want {
			return nil, fmt.Errorf("zstore: chunk %s has %d bytes, want %d: %w",
				name, len(blob), want, ErrCorrupt)
		}
		vals = decodeInto(vals, blob, mv.DType)
	}

	return vals, nil
}

// encode serializes values at the requested on-disk precision.
func encode(vals []float64, dtype DType) ([]byte, error) {
	switch dtype {
	case Float32:
		out := make([]byte, 4*len(vals))
		for i, v := range vals {
			binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(float32(v)))
		}
		return out, nil
	case Float64:
		out := make([]byte, 8*len(vals))
		for i, v := range vals {
			binary.LittleEndian.PutUint64(out[8*i:], math.Float64bits(v))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("dtype %q: %w", dtype, ErrBadDType)
	}
}

// decodeInto appends decoded values to dst. blob length is validated by the
// caller against the metadata.
func decodeInto(dst []float64, blob []byte, dtype DType) []float64 {
	switch dtype {
	case Float32:
		for i := 0; i+4 <= len(blob); i += 4 {
			dst = append(dst, float64(math.Float32frombits(binary.LittleEndian.Uint32(blob[i:]))))
		}
	case Float64:
		for i := 0; i+8 <= len(blob); i += 8 {
			dst = append(dst, math.Float64frombits(binary.LittleEndian.Uint64(blob[i:])))
		}
	}

	return dst
}
