package graphlocal

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync/atomic"
	"time"

	"github.com/hupe1980/graphlocal/internal/shm"
	"github.com/hupe1980/graphlocal/resource"
)

// Names of the arrays in a SharedDescriptor.
const (
	ArrayRowStart      = "rowStart"
	ArrayColIndex      = "colIndex"
	ArrayWeight        = "weight"
	ArrayDegree        = "degree"
	ArrayInvDegree     = "invDegree"
	ArraySqrtDegree    = "sqrtDegree"
	ArrayInvSqrtDegree = "invSqrtDegree"
)

// ArrayDescriptor locates one typed array inside a shared segment.
type ArrayDescriptor = shm.Array

// ElemType is the element type of a shared array.
type ElemType = shm.ElemType

// Element types used by shared arrays.
const (
	ElemUint32  = shm.Uint32
	ElemUint64  = shm.Uint64
	ElemFloat64 = shm.Float64
)

// SharedDescriptor describes an exported graph. It is plain data: it can be
// handed to goroutines as is or JSON encoded for another process on the
// same host.
type SharedDescriptor struct {
	// Handle is the path of the segment file.
	Handle     string                     `json:"handle"`
	Size       int                        `json:"size"`
	Generation uint64                     `json:"generation"`
	N          int                        `json:"n"`
	M          int                        `json:"m"`
	Volume     float64                    `json:"volume"`
	Weighted   bool                       `json:"weighted"`
	Arrays     map[string]ArrayDescriptor `json:"arrays"`
}

// Export is an owner's handle on one shared segment.
//
// The segment stays valid until Close. Views attached before Close keep
// their mapping until they are closed themselves, but no new view can be
// attached afterwards.
type Export struct {
	owner      *Graph
	seg        *shm.Segment
	desc       SharedDescriptor
	bytes      int64
	controller *resource.Controller
	closed     atomic.Bool
}

// Descriptor returns the descriptor issued for this export.
func (e *Export) Descriptor() SharedDescriptor {
	d := e.desc
	d.Arrays = maps.Clone(e.desc.Arrays)
	return d
}

// Stale reports whether the owner was mutated after the export or the
// export was closed.
func (e *Export) Stale() bool {
	return e.closed.Load() || e.seg.Generation() != e.desc.Generation
}

// Close unmaps and unlinks the segment and releases its memory budget.
func (e *Export) Close() error {
	return e.close(true)
}

func (e *Export) close(detach bool) error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}

	if detach && e.owner != nil {
		e.owner.mu.Lock()
		e.owner.exports = slices.DeleteFunc(e.owner.exports, func(x *Export) bool { return x == e })
		e.owner.mu.Unlock()
	}

	err := e.seg.Remove()
	e.controller.ReleaseMemory(e.bytes)
	return err
}

func padded(bytes int) int {
	return (bytes + shm.Alignment - 1) &^ (shm.Alignment - 1)
}

// ToShared copies the adjacency and statistics of g into a new shared
// segment and returns the owning Export.
//
// Workers attach with FromShared. Any later mutation of g marks the export
// stale.
func (g *Graph) ToShared() (*Export, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}

	start := time.Now()
	e, err := g.toShared()

	var bytes int
	if e != nil {
		bytes = e.desc.Size
	}
	if mc := g.opts.metricsCollector; mc != nil {
		mc.RecordExport(bytes, time.Since(start), err)
	}
	handle := ""
	if e != nil {
		handle = e.desc.Handle
	}
	g.opts.logger.LogExport(context.Background(), handle, bytes, err)

	return e, err
}

func (g *Graph) toShared() (*Export, error) {
	payload := padded(8*(g.n+1)) + padded(4*g.m) + padded(8*g.m) + 4*padded(8*g.n)
	total := int64(shm.HeaderSize + payload)

	rc := g.opts.controller
	if err := rc.AcquireMemory(total); err != nil {
		return nil, fmt.Errorf("export %d bytes (%d of %d bytes in use): %w", total, rc.MemoryUsage(), rc.MemoryLimit(), err)
	}

	seg, err := shm.Create(g.opts.sharedDir, payload)
	if err != nil {
		rc.ReleaseMemory(total)
		return nil, err
	}

	st := g.stats
	steps := []struct {
		name string
		put  func() (ArrayDescriptor, error)
	}{
		{ArrayRowStart, func() (ArrayDescriptor, error) { return seg.PutUint64s(g.rowStart) }},
		{ArrayColIndex, func() (ArrayDescriptor, error) { return seg.PutUint32s(g.colIndex) }},
		{ArrayWeight, func() (ArrayDescriptor, error) { return seg.PutFloat64s(g.weight) }},
		{ArrayDegree, func() (ArrayDescriptor, error) { return seg.PutFloat64s(st.Degree) }},
		{ArrayInvDegree, func() (ArrayDescriptor, error) { return seg.PutFloat64s(st.InvDegree) }},
		{ArraySqrtDegree, func() (ArrayDescriptor, error) { return seg.PutFloat64s(st.SqrtDegree) }},
		{ArrayInvSqrtDegree, func() (ArrayDescriptor, error) { return seg.PutFloat64s(st.InvSqrtDegree) }},
	}

	arrays := make(map[string]ArrayDescriptor, len(steps))
	for _, step := range steps {
		a, err := step.put()
		if err != nil {
			_ = seg.Remove()
			rc.ReleaseMemory(total)
			return nil, fmt.Errorf("put %s: %w", step.name, err)
		}
		arrays[step.name] = a
	}

	e := &Export{
		owner: g,
		seg:   seg,
		desc: SharedDescriptor{
			Handle:     seg.Path(),
			Size:       seg.Size(),
			Generation: seg.Generation(),
			N:          g.n,
			M:          g.m,
			Volume:     st.Volume,
			Weighted:   g.weighted,
			Arrays:     arrays,
		},
		bytes:      total,
		controller: rc,
	}

	g.mu.Lock()
	g.exports = append(g.exports, e)
	g.mu.Unlock()

	return e, nil
}

// invalidateExports bumps the generation of every open export of g.
func (g *Graph) invalidateExports() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var firstErr error
	for _, e := range g.exports {
		if e.closed.Load() {
			continue
		}
		if _, err := e.seg.BumpGeneration(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// FromShared attaches a read-only view of an exported graph.
//
// The returned Graph reads the owner's segment directly. It rejects
// mutation with ErrReadOnly and must be closed when no longer needed.
// Descriptors issued before a mutation of the owner are rejected with
// ErrStaleDescriptor.
func FromShared(desc SharedDescriptor, opts ...Option) (*Graph, error) {
	o := applyOptions(opts)

	start := time.Now()
	g, err := attach(desc, o)

	if o.metricsCollector != nil {
		o.metricsCollector.RecordImport(time.Since(start), err)
	}
	o.logger.LogImport(context.Background(), desc.Handle, desc.Generation, err)

	return g, err
}

func attach(desc SharedDescriptor, o options) (*Graph, error) {
	if desc.N <= 0 || desc.M < 0 {
		return nil, fmt.Errorf("%w: descriptor with n=%d m=%d", ErrInconsistentState, desc.N, desc.M)
	}

	seg, err := shm.Attach(desc.Handle)
	if err != nil {
		return nil, err
	}

	g, err := viewOf(seg, desc, o)
	if err != nil {
		_ = seg.Close()
		return nil, err
	}
	return g, nil
}

func viewOf(seg *shm.Segment, desc SharedDescriptor, o options) (*Graph, error) {
	if seg.Size() != desc.Size {
		return nil, fmt.Errorf("%w: segment size %d, descriptor says %d", ErrStaleDescriptor, seg.Size(), desc.Size)
	}
	gen := seg.Generation()
	if gen != desc.Generation {
		return nil, fmt.Errorf("%w: generation %d, descriptor has %d", ErrStaleDescriptor, gen, desc.Generation)
	}

	n, m := desc.N, desc.M

	rowStart, err := seg.Uint64s(desc.Arrays[ArrayRowStart])
	if err == nil {
		err = checkLen(ArrayRowStart, len(rowStart), n+1)
	}
	if err != nil {
		return nil, err
	}
	colIndex, err := seg.Uint32s(desc.Arrays[ArrayColIndex])
	if err == nil {
		err = checkLen(ArrayColIndex, len(colIndex), m)
	}
	if err != nil {
		return nil, err
	}
	weight, err := seg.Float64s(desc.Arrays[ArrayWeight])
	if err == nil {
		err = checkLen(ArrayWeight, len(weight), m)
	}
	if err != nil {
		return nil, err
	}

	st := &Statistics{Volume: desc.Volume}
	for _, f := range []struct {
		name string
		dst  *[]float64
	}{
		{ArrayDegree, &st.Degree},
		{ArrayInvDegree, &st.InvDegree},
		{ArraySqrtDegree, &st.SqrtDegree},
		{ArrayInvSqrtDegree, &st.InvSqrtDegree},
	} {
		v, err := seg.Float64s(desc.Arrays[f.name])
		if err == nil {
			err = checkLen(f.name, len(v), n)
		}
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	if rowStart[0] != 0 || rowStart[n] != uint64(m) {
		return nil, fmt.Errorf("%w: row offsets do not span [0, %d]", ErrInconsistentState, m)
	}
	for i := 0; i < n; i++ {
		if rowStart[i] > rowStart[i+1] {
			return nil, fmt.Errorf("%w: row offsets decrease at %d", ErrInconsistentState, i)
		}
	}
	for _, c := range colIndex {
		if int(c) >= n {
			return nil, outOfRange(int64(c), n)
		}
	}

	return &Graph{
		n:        n,
		m:        m,
		rowStart: rowStart,
		colIndex: colIndex,
		weight:   weight,
		weighted: desc.Weighted,
		stats:    st,
		opts:     o,
		view:     seg,
		viewGen:  gen,
	}, nil
}

func checkLen(name string, have, want int) error {
	if have != want {
		return fmt.Errorf("%w: %s has %d elements, want %d", ErrInconsistentState, name, have, want)
	}
	return nil
}
