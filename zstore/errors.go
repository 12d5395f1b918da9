// SPDX-License-Identifier: MIT
// Package zstore: sentinel error set. Persistence failures (os-level) are
// wrapped with path context; structural failures use the sentinels below.

package zstore

import "errors"

var (
	// ErrNotStore indicates the path does not exist or holds no readable
	// store metadata.
	ErrNotStore = errors.New("zstore: not a chunked array store")

	// ErrUnknownDim indicates a variable referencing a dimension name that
	// was never declared on the dataset.
	ErrUnknownDim = errors.New("zstore: unknown dimension")

	// ErrBadVariable indicates an inconsistent variable definition: value
	// count disagreeing with the product of its dimension lengths, an empty
	// dimension list, or a duplicate name.
	ErrBadVariable = errors.New("zstore: invalid variable definition")

	// ErrBadDType indicates an on-disk dtype other than float32/float64.
	ErrBadDType = errors.New("zstore: unsupported dtype")

	// ErrCorrupt indicates chunk payloads whose total size disagrees with
	// the store metadata.
	ErrCorrupt = errors.New("zstore: chunk data corrupt")
)
