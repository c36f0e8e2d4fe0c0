package arena

import "testing"

func TestAllocWithinChunk(t *testing.T) {
	a := New(64)

	b1 := a.Alloc(16)
	b2 := a.Alloc(16)

	for i := range b1 {
		b1[i] = 1
	}

	for i := range b2 {
		b2[i] = 2
	}

	for i := range b1 {
		if b1[i] != 1 {
			t.Fatalf("b1 corrupted at %d: %d", i, b1[i])
		}
	}

	if len(a.chunks) != 1 {
		t.Fatalf("expected allocations to share one chunk, got %d", len(a.chunks))
	}
}

func TestAllocSpillsToNewChunk(t *testing.T) {
	a := New(16)

	a.Alloc(10)
	a.Alloc(10)

	if len(a.chunks) != 2 {
		t.Fatalf("expected a second chunk once the first overflowed, got %d", len(a.chunks))
	}
}

func TestAllocLargerThanChunkSize(t *testing.T) {
	a := New(16)

	b := a.Alloc(100)
	if len(b) != 100 {
		t.Fatalf("got %d bytes, want 100", len(b))
	}
}

func TestBytesCopiesIntoArena(t *testing.T) {
	a := New(64)

	src := []byte("hello")

	b := a.Bytes(src)
	if string(b) != "hello" {
		t.Fatalf("got %q", b)
	}

	// The arena copy must not alias the caller's slice.
	src[0] = 'x'

	if string(b) != "hello" {
		t.Fatalf("arena copy aliased the source, got %q", b)
	}
}

func TestResetDropsChunks(t *testing.T) {
	a := New(16)

	a.Alloc(8)
	a.Reset()

	if len(a.chunks) != 0 {
		t.Fatalf("expected no chunks after reset, got %d", len(a.chunks))
	}
}
