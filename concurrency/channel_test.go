package concurrency

import (
	"testing"
	"time"

	"github.com/sqale-lang/sqale/gc"
	"github.com/sqale-lang/sqale/value"
)

func newChan(t *testing.T) *value.ChanObj {
	t.Helper()

	c := gc.New()
	c.SetRootMarker(func(mark func(*gc.Obj)) {})

	v := NewChan(c)

	return v.Ch
}

func TestFIFOSingleProducerSingleConsumer(t *testing.T) {
	ch := newChan(t)

	go func() {
		for i := 0; i < 5; i++ {
			Send(ch, value.NewInt(int64(i)))
		}
	}()

	for i := 0; i < 5; i++ {
		v := Recv(ch)
		if v.I != int64(i) {
			t.Fatalf("got %d, want %d", v.I, i)
		}
	}
}

func TestTryRecvOnEmptyChannel(t *testing.T) {
	ch := newChan(t)

	if _, ok := TryRecv(ch); ok {
		t.Fatal("expected TryRecv to report false on an empty channel")
	}

	Send(ch, value.NewInt(7))

	v, ok := TryRecv(ch)
	if !ok || v.I != 7 {
		t.Fatalf("got %+v ok=%v", v, ok)
	}
}

func TestCapAndLen(t *testing.T) {
	ch := newChan(t)

	if Cap(ch) != value.ChanCapacity {
		t.Fatalf("got cap %d, want %d", Cap(ch), value.ChanCapacity)
	}

	Send(ch, value.NewInt(1))
	Send(ch, value.NewInt(2))

	if Len(ch) != 2 {
		t.Fatalf("got len %d, want 2", Len(ch))
	}
}

func TestSpawnRuns(t *testing.T) {
	done := make(chan struct{})

	Spawn(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("spawned goroutine never ran")
	}
}

func TestSpawnReturnsDistinctIDs(t *testing.T) {
	a := Spawn(func() {})
	b := Spawn(func() {})

	if a == b {
		t.Fatal("expected distinct thread diagnostic ids")
	}
}

func TestSpawnRecoversPanic(t *testing.T) {
	done := make(chan struct{})

	Spawn(func() {
		defer close(done)
		panic("boom")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("panicking spawned goroutine never completed")
	}
}

func TestNewChanAssignsID(t *testing.T) {
	c := gc.New()
	c.SetRootMarker(func(mark func(*gc.Obj)) {})

	v := NewChan(c)

	if ChanID(v.Ch).String() == "00000000-0000-0000-0000-000000000000" {
		t.Fatal("expected NewChan to assign a non-zero diagnostic id")
	}
}
