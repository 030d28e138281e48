// Package conv provides checked numeric conversions.
//
// Vertex ids are stored as uint32 and CSR offsets as uint64. Every place where
// caller-supplied or shared-memory values cross one of those widths goes
// through a function in this package so an out-of-range value surfaces as an
// error instead of silently wrapping.
//
// For conversions that are provably safe by domain constraints (e.g., loop
// indices bounded by the vertex count), use direct type casts instead.
package conv
