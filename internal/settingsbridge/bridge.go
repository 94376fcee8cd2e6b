// Package settingsbridge publishes configuration snapshots to the hot
// path. spec.md's original design assumes a Cocoa main-thread-bound,
// recursion-safe accessor; CGEventTap callbacks in flowmod run on a
// dedicated non-main runloop thread (see internal/interceptor), so the
// idiomatic Go equivalent is a lock-free atomic snapshot pointer rather
// than a thread-affine accessor. Every read is wait-free and every write
// replaces the whole snapshot, so there is nothing to recurse into.
package settingsbridge

import (
	"sync/atomic"

	"github.com/sendmebits/flowmod/internal/model"
)

// Bridge holds the current model.Settings snapshot for read access from
// any goroutine, including event-tap callback threads.
type Bridge struct {
	current atomic.Pointer[model.Settings]
}

// New returns a Bridge seeded with the given snapshot. initial must not be
// nil; callers typically pass model.Defaults() or a freshly loaded config.
func New(initial *model.Settings) *Bridge {
	b := &Bridge{}
	b.current.Store(initial)
	return b
}

// Get returns the current settings snapshot. Never returns nil once
// constructed via New.
func (b *Bridge) Get() *model.Settings {
	return b.current.Load()
}

// Publish atomically replaces the current snapshot. Safe to call from any
// goroutine concurrently with Get.
func (b *Bridge) Publish(s *model.Settings) {
	b.current.Store(s)
}
