// Package gc implements SQALE's mark-and-sweep collector: every heap
// object carries an intrusive header, the collector walks from a
// caller-supplied set of roots, and the threshold at which a collection
// is triggered doubles after every triggered collection.
package gc

import "sync"

// Obj is the intrusive header every GC-managed heap value embeds
// (closures, channels, vectors, maps, mutable structs): a next-pointer
// link, a mark bit, and a debug type tag.
type Obj struct {
	next    *Obj
	marked  bool
	size    int
	TypeTag uint8

	// MarkChildren, if set, is invoked during the mark phase with a
	// callback the object must call for every Obj it directly references
	// (a closure's captured environment, a vector's elements, ...). Kept
	// as a field rather than an interface method so package gc never has
	// to import package value and create a cycle.
	MarkChildren func(mark func(*Obj))
}

// defaultThreshold is the byte count at which the first collection runs.
const defaultThreshold = 1 << 20 // 1 MiB

// Collector owns the list of every live heap object and the
// threshold-based collection policy. A spawned SQALE thread allocates on
// the same Collector as every other thread, so Register/Collect take mu:
// one VM-wide lock guarding allocation and the stop-the-world pause
// only. Evaluation of independent threads otherwise proceeds lock-free;
// DESIGN.md records the full thread-safety contract.
type Collector struct {
	mu sync.Mutex

	objects        *Obj
	bytesAllocated int
	nextThreshold  int
	rootMarker     func(mark func(*Obj))

	collections int
}

// New creates an idle Collector. Call SetRootMarker before the first Alloc
// so a collection triggered mid-run has somewhere to start marking from.
func New() *Collector {
	return &Collector{nextThreshold: defaultThreshold}
}

// SetRootMarker installs the function the collector calls at the start
// of every mark phase. The callback receives a mark function and must
// call it for every GC root. Package vm's callback marks the global
// environment's frame chain, which also holds imported modules' top-level
// bindings; frames of calls still in progress are not marked.
func (c *Collector) SetRootMarker(fn func(mark func(*Obj))) {
	c.rootMarker = fn
}

// Register adds a freshly allocated object to the collector's list and may
// trigger a collection if the allocated byte count has crossed the current
// threshold.
func (c *Collector) Register(o *Obj, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	o.next = c.objects
	o.size = size
	c.objects = o
	c.bytesAllocated += size

	if c.bytesAllocated > c.nextThreshold {
		c.collectLocked()
		c.nextThreshold *= 2
	}
}

// Mark marks o (and, recursively, everything reachable from it) live for
// the current collection. Safe to call with a nil or already-marked o.
func (c *Collector) Mark(o *Obj) {
	if o == nil || o.marked {
		return
	}

	o.marked = true

	if o.MarkChildren != nil {
		o.MarkChildren(c.Mark)
	}
}

// Collect runs one full stop-the-world mark-and-sweep pass.
func (c *Collector) Collect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.collectLocked()
}

func (c *Collector) collectLocked() {
	if c.rootMarker != nil {
		c.rootMarker(c.Mark)
	}

	c.sweep()
	c.collections++
}

func (c *Collector) sweep() {
	var (
		prev *Obj
		obj  = c.objects
	)

	for obj != nil {
		next := obj.next

		if obj.marked {
			obj.marked = false
			prev = obj
		} else {
			if prev == nil {
				c.objects = next
			} else {
				prev.next = next
			}

			c.bytesAllocated -= obj.size
		}

		obj = next
	}
}

// BytesAllocated reports live heap bytes as of the last Register/Collect.
func (c *Collector) BytesAllocated() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.bytesAllocated
}

// Collections reports how many full collections have run, for diagnostics
// and tests.
func (c *Collector) Collections() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.collections
}
