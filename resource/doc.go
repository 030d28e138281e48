// Package resource limits the memory published through shared segments and
// the number of concurrently attached workers.
//
//	┌────────────────────────────────────────────┐
//	│                 Controller                 │
//	├─────────────────────┬──────────────────────┤
//	│  Export memory      │  Worker slots (sem)  │
//	│  (fail-fast)        │  (blocking)          │
//	├─────────────────────┼──────────────────────┤
//	│  AcquireMemory      │  AcquireWorker       │
//	│  ReleaseMemory      │  TryAcquireWorker    │
//	│  MemoryUsage        │  ReleaseWorker       │
//	└─────────────────────┴──────────────────────┘
//
// # Memory
//
// Every exported graph reserves its segment size before the segment is
// created and releases it when the export is closed:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30,
//	})
//	g, _ := graphlocal.New(edges, graphlocal.WithResourceController(rc))
//	exp, err := g.ToShared() // ErrMemoryLimitExceeded when over budget
//
// # Workers
//
// The parallel package takes one worker slot per attached view, so several
// fan-outs sharing a controller never hold more than MaxWorkers views at once.
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
