// Package mmap provides file-backed shared memory mappings.
//
// # Overview
//
// A graph exported for parallel workers lives in a single file mapped with
// MAP_SHARED. The owner creates the file and maps it read-write; every reader
// maps the same file read-only, so all of them observe the same physical
// pages without copying.
//
// # Usage
//
//	w, err := mmap.Create("/dev/shm/graph-123", size)
//	if err != nil { ... }
//	defer w.Close()
//	copy(w.Bytes(), payload)
//
//	r, err := mmap.Open("/dev/shm/graph-123")
//	if err != nil { ... }
//	defer r.Close()
//	data := r.Bytes() // read-only
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) for access hints
//   - Windows: CreateFileMapping/MapViewOfFile (madvise is a no-op)
//
// # Thread Safety
//
// A Mapping is safe for concurrent read access. Close is idempotent and
// protected by an atomic flag; callers must ensure no goroutine touches
// Bytes() after Close returns.
package mmap
