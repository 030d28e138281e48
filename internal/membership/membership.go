// Package membership provides pooled vertex sets for repeated subset queries.
//
// A scoring run tests neighbor membership against thousands of small subsets.
// Sets are taken from a sync.Pool and cleared on return, so the steady state
// allocates nothing once the pool is warm.
package membership

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
)

// Set is a compressed set of vertex ids.
type Set struct {
	rb *roaring.Bitmap
}

var setPool = sync.Pool{
	New: func() any {
		return &Set{rb: roaring.New()}
	},
}

// New creates a new empty set outside the pool.
func New() *Set {
	return &Set{rb: roaring.New()}
}

// Get takes an empty set from the pool. Call Put when done.
func Get() *Set {
	s := setPool.Get().(*Set)
	s.rb.Clear()
	return s
}

// Put returns a set to the pool.
func Put(s *Set) {
	if s == nil {
		return
	}
	// Clear before returning to pool to release container memory
	s.rb.Clear()
	setPool.Put(s)
}

// Of returns a pooled set holding ids.
func Of(ids []uint32) *Set {
	s := Get()
	s.AddMany(ids)
	return s
}

// Add adds a vertex id.
func (s *Set) Add(id uint32) {
	s.rb.Add(id)
}

// AddMany adds all ids.
func (s *Set) AddMany(ids []uint32) {
	s.rb.AddMany(ids)
}

// Contains reports whether id is in the set.
func (s *Set) Contains(id uint32) bool {
	return s.rb.Contains(id)
}

// Len returns the number of distinct ids in the set.
func (s *Set) Len() int {
	return int(s.rb.GetCardinality()) //nolint:gosec // vertex ids are uint32
}

// ForEach calls fn for every id in ascending order until fn returns false.
func (s *Set) ForEach(fn func(id uint32) bool) {
	it := s.rb.Iterator()
	for it.HasNext() {
		if !fn(it.Next()) {
			break
		}
	}
}

// ToArray returns the ids in ascending order.
func (s *Set) ToArray() []uint32 {
	return s.rb.ToArray()
}
