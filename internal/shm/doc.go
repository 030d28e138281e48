// Package shm provides shared memory segments for publishing read-only arrays
// to parallel readers.
//
// A Segment is one file-backed shared mapping laid out as a fixed header
// followed by a bump-allocated payload. Offsets into the payload are stable
// for the lifetime of the segment, so a segment can be described by its path
// plus a list of (offset, length, element type) triples and re-opened by any
// reader without copying.
//
// # Layout
//
//	┌──────────────────────── header (64 B) ────────────────────────┐
//	│ magic (8) │ generation (8) │ used (8) │ reserved ...          │
//	├───────────────────────────────────────────────────────────────┤
//	│ array 0 (8-byte aligned) │ array 1 │ ...                      │
//	└───────────────────────────────────────────────────────────────┘
//
// # Generations
//
// The owner stamps a generation into the header. Bumping it marks every
// descriptor handed out before as stale; readers compare the generation they
// were given against the header before and while using the segment. Nothing
// else synchronizes owner and readers: a segment is read-only after export.
package shm
