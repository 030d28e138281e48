package shm

import (
	"fmt"
	"unsafe"
)

// PutUint32s copies src into a fresh allocation and returns its reference.
func (s *Segment) PutUint32s(src []uint32) (Array, error) {
	a, dst, err := s.put(Uint32, len(src))
	if err != nil || len(src) == 0 {
		return a, err
	}
	copy(unsafe.Slice((*uint32)(unsafe.Pointer(&dst[0])), len(src)), src) //nolint:gosec // dst is 8-byte aligned
	return a, nil
}

// PutUint64s copies src into a fresh allocation and returns its reference.
func (s *Segment) PutUint64s(src []uint64) (Array, error) {
	a, dst, err := s.put(Uint64, len(src))
	if err != nil || len(src) == 0 {
		return a, err
	}
	copy(unsafe.Slice((*uint64)(unsafe.Pointer(&dst[0])), len(src)), src) //nolint:gosec // dst is 8-byte aligned
	return a, nil
}

// PutFloat64s copies src into a fresh allocation and returns its reference.
func (s *Segment) PutFloat64s(src []float64) (Array, error) {
	a, dst, err := s.put(Float64, len(src))
	if err != nil || len(src) == 0 {
		return a, err
	}
	copy(unsafe.Slice((*float64)(unsafe.Pointer(&dst[0])), len(src)), src) //nolint:gosec // dst is 8-byte aligned
	return a, nil
}

func (s *Segment) put(t ElemType, n int) (Array, []byte, error) {
	off, err := s.Alloc(n * t.Size())
	if err != nil {
		return Array{}, nil, err
	}
	a := Array{Offset: off, Len: n, Type: t}
	b, err := s.Bytes(a)
	if err != nil {
		return Array{}, nil, err
	}
	return a, b, nil
}

// Uint32s returns a non-owning view of a uint32 array.
func (s *Segment) Uint32s(a Array) ([]uint32, error) {
	b, err := s.view(a, Uint32)
	if err != nil || len(b) == 0 {
		return nil, err
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&b[0])), a.Len), nil //nolint:gosec // offsets are validated and aligned
}

// Uint64s returns a non-owning view of a uint64 array.
func (s *Segment) Uint64s(a Array) ([]uint64, error) {
	b, err := s.view(a, Uint64)
	if err != nil || len(b) == 0 {
		return nil, err
	}
	return unsafe.Slice((*uint64)(unsafe.Pointer(&b[0])), a.Len), nil //nolint:gosec // offsets are validated and aligned
}

// Float64s returns a non-owning view of a float64 array.
func (s *Segment) Float64s(a Array) ([]float64, error) {
	b, err := s.view(a, Float64)
	if err != nil || len(b) == 0 {
		return nil, err
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(&b[0])), a.Len), nil //nolint:gosec // offsets are validated and aligned
}

func (s *Segment) view(a Array, want ElemType) ([]byte, error) {
	if a.Type != want {
		return nil, fmt.Errorf("%w: have %s, want %s", ErrTypeMismatch, a.Type, want)
	}
	return s.Bytes(a)
}
