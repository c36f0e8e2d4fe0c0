package gc

import "testing"

func TestUnreachableObjectsAreSwept(t *testing.T) {
	c := New()
	c.SetRootMarker(func(mark func(*Obj)) {})

	o := &Obj{}
	c.Register(o, 8)

	if c.BytesAllocated() != 8 {
		t.Fatalf("got %d bytes allocated, want 8", c.BytesAllocated())
	}

	c.Collect()

	if c.BytesAllocated() != 0 {
		t.Fatalf("expected sweep to reclaim unreachable object, got %d bytes", c.BytesAllocated())
	}
}

func TestReachableObjectsSurvive(t *testing.T) {
	c := New()

	root := &Obj{}
	c.SetRootMarker(func(mark func(*Obj)) { mark(root) })

	c.Register(root, 8)
	c.Collect()

	if c.BytesAllocated() != 8 {
		t.Fatalf("expected rooted object to survive, got %d bytes", c.BytesAllocated())
	}
}

func TestMarkChildrenIsFollowed(t *testing.T) {
	c := New()

	child := &Obj{}
	parent := &Obj{MarkChildren: func(mark func(*Obj)) { mark(child) }}

	c.SetRootMarker(func(mark func(*Obj)) { mark(parent) })

	c.Register(parent, 8)
	c.Register(child, 8)
	c.Collect()

	if c.BytesAllocated() != 16 {
		t.Fatalf("expected both parent and child to survive, got %d bytes", c.BytesAllocated())
	}
}

func TestThresholdDoublesAfterTriggeredCollection(t *testing.T) {
	c := New()
	c.SetRootMarker(func(mark func(*Obj)) {})
	c.nextThreshold = 16

	// Crossing the threshold triggers a collection and doubles it, even
	// when the sweep frees everything.
	c.Register(&Obj{}, 32)

	if c.nextThreshold != 32 {
		t.Fatalf("got threshold %d after first collection, want 32", c.nextThreshold)
	}

	c.Register(&Obj{}, 40)

	if c.nextThreshold != 64 {
		t.Fatalf("got threshold %d after second collection, want 64", c.nextThreshold)
	}
}

func TestCollectDropsStaleMarks(t *testing.T) {
	c := New()

	keep := true
	root := &Obj{}

	c.SetRootMarker(func(mark func(*Obj)) {
		if keep {
			mark(root)
		}
	})

	c.Register(root, 8)
	c.Collect()

	keep = false
	c.Collect()

	if c.BytesAllocated() != 0 {
		t.Fatalf("expected object dropped once no longer rooted, got %d bytes", c.BytesAllocated())
	}
}
