package shm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/hupe1980/graphlocal/internal/conv"
	"github.com/hupe1980/graphlocal/internal/mmap"
)

const (
	// HeaderSize is the number of bytes reserved in front of the payload.
	HeaderSize = 64
	// Alignment is the alignment of every allocation in the payload.
	Alignment = 8

	generationOffset = 8
	usedOffset       = 16
	createAttempts   = 16
)

var magic = [8]byte{'G', 'L', 'S', 'H', 'M', '0', '0', '1'}

var (
	// ErrFull is returned when an allocation does not fit into the segment.
	ErrFull = errors.New("shm: segment is full")
	// ErrBadMagic is returned when attaching to a file that is not a segment.
	ErrBadMagic = errors.New("shm: bad magic")
	// ErrReadOnly is returned when allocating in an attached segment.
	ErrReadOnly = errors.New("shm: segment is read-only")
	// ErrOutOfBounds is returned when an array reference points outside the payload.
	ErrOutOfBounds = errors.New("shm: array out of bounds")
	// ErrTypeMismatch is returned when an array is viewed with the wrong element type.
	ErrTypeMismatch = errors.New("shm: element type mismatch")
)

var segmentSeq atomic.Uint64

// ElemType is the element type of an array stored in a segment.
type ElemType uint8

const (
	// Uint32 elements (vertex ids).
	Uint32 ElemType = iota + 1
	// Uint64 elements (CSR offsets).
	Uint64
	// Float64 elements (weights and statistics).
	Float64
)

// Size returns the element width in bytes.
func (t ElemType) Size() int {
	switch t {
	case Uint32:
		return 4
	case Uint64, Float64:
		return 8
	default:
		return 0
	}
}

func (t ElemType) String() string {
	switch t {
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Float64:
		return "float64"
	default:
		return fmt.Sprintf("ElemType(%d)", uint8(t))
	}
}

// Array locates one typed array inside a segment payload.
type Array struct {
	Offset uint64   `json:"offset"`
	Len    int      `json:"len"`
	Type   ElemType `json:"type"`
}

// Segment is a shared memory segment.
type Segment struct {
	path    string
	mapping *mmap.Mapping
}

// DefaultDir returns /dev/shm when it exists and os.TempDir() otherwise.
func DefaultDir() string {
	if fi, err := os.Stat("/dev/shm"); err == nil && fi.IsDir() {
		return "/dev/shm"
	}
	return os.TempDir()
}

// Create creates a new owner segment in dir with room for payload bytes.
// If dir is empty, DefaultDir is used.
func Create(dir string, payload int) (*Segment, error) {
	if payload < 0 {
		return nil, mmap.ErrInvalidSize
	}
	if dir == "" {
		dir = DefaultDir()
	}

	size := HeaderSize + payload

	var lastErr error
	for i := 0; i < createAttempts; i++ {
		name := fmt.Sprintf("graphlocal-%d-%d-%d", os.Getpid(), time.Now().UnixNano(), segmentSeq.Add(1))
		path := filepath.Join(dir, name)

		m, err := mmap.Create(path, size)
		if err != nil {
			if errors.Is(err, os.ErrExist) {
				lastErr = err
				continue
			}
			return nil, err
		}

		s := &Segment{path: path, mapping: m}
		copy(m.Bytes()[:len(magic)], magic[:])
		s.generation().Store(1)
		s.used().Store(HeaderSize)
		return s, nil
	}

	return nil, fmt.Errorf("shm: create segment in %s: %w", dir, lastErr)
}

// Attach maps an existing segment read-only.
func Attach(path string) (*Segment, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	if m.Size() < HeaderSize || [8]byte(m.Bytes()[:8]) != magic {
		_ = m.Close()
		return nil, fmt.Errorf("%w: %s", ErrBadMagic, path)
	}

	_ = m.Advise(mmap.AccessRandom)

	return &Segment{path: path, mapping: m}, nil
}

func (s *Segment) header(off int) unsafe.Pointer {
	return unsafe.Pointer(&s.mapping.Bytes()[off]) //nolint:gosec // header words are 8-byte aligned in a page-aligned mapping
}

func (s *Segment) generation() *atomic.Uint64 {
	return (*atomic.Uint64)(s.header(generationOffset))
}

func (s *Segment) used() *atomic.Uint64 {
	return (*atomic.Uint64)(s.header(usedOffset))
}

// Path returns the file backing the segment.
func (s *Segment) Path() string {
	return s.path
}

// Size returns the total mapped size including the header.
func (s *Segment) Size() int {
	return s.mapping.Size()
}

// Owner reports whether this handle created the segment. Only the owner
// maps the segment writable.
func (s *Segment) Owner() bool {
	return s.mapping.Writable()
}

// Closed reports whether the mapping has been released.
func (s *Segment) Closed() bool {
	return s.mapping.Closed()
}

// Generation returns the generation stamped in the header.
// It returns 0 once the handle is closed.
func (s *Segment) Generation() uint64 {
	if s.mapping.Closed() {
		return 0
	}
	return s.generation().Load()
}

// BumpGeneration invalidates every descriptor issued for the current generation.
func (s *Segment) BumpGeneration() (uint64, error) {
	if !s.Owner() {
		return 0, ErrReadOnly
	}
	if s.mapping.Closed() {
		return 0, mmap.ErrClosed
	}
	return s.generation().Add(1), nil
}

// Alloc reserves size bytes in the payload and returns the absolute offset.
func (s *Segment) Alloc(size int) (uint64, error) {
	if !s.Owner() {
		return 0, ErrReadOnly
	}
	if s.mapping.Closed() {
		return 0, mmap.ErrClosed
	}
	sz, err := conv.IntToUint64(size)
	if err != nil {
		return 0, err
	}

	limit := uint64(s.mapping.Size())
	for {
		cur := s.used().Load()
		padding := (Alignment - (cur % Alignment)) % Alignment
		next := cur + padding + sz
		if next > limit {
			return 0, ErrFull
		}
		if s.used().CompareAndSwap(cur, next) {
			return cur + padding, nil
		}
	}
}

// Bytes returns the payload bytes of an array.
func (s *Segment) Bytes(a Array) ([]byte, error) {
	if s.mapping.Closed() {
		return nil, mmap.ErrClosed
	}
	width := a.Type.Size()
	if width == 0 || a.Len < 0 {
		return nil, fmt.Errorf("%w: %s len %d", ErrTypeMismatch, a.Type, a.Len)
	}
	if a.Offset < HeaderSize || a.Offset%Alignment != 0 {
		return nil, fmt.Errorf("%w: offset %d", ErrOutOfBounds, a.Offset)
	}
	off, err := conv.Uint64ToInt(a.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutOfBounds, err)
	}
	size := s.mapping.Size()
	if off > size || a.Len > (size-off)/width {
		return nil, fmt.Errorf("%w: %d elements of %s at %d exceed %d", ErrOutOfBounds, a.Len, a.Type, off, size)
	}
	n := a.Len * width
	return s.mapping.Bytes()[off : off+n : off+n], nil
}

// Close releases this handle's mapping. It does not remove the backing file.
func (s *Segment) Close() error {
	return s.mapping.Close()
}

// Remove releases the mapping and unlinks the backing file.
// Readers that already attached keep their mapping until they close it.
func (s *Segment) Remove() error {
	if !s.Owner() {
		return ErrReadOnly
	}
	err := s.mapping.Close()
	if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
		err = rmErr
	}
	return err
}
