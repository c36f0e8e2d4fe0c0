// Package concurrency implements SQALE's channel and thread primitives:
// a bounded, fixed-capacity FIFO channel and detached, fire-and-forget
// thread spawning for closures, built on Go channels and goroutines.
// The Go channel type already is exactly the bounded blocking queue the
// language needs, with no hand-rolled mutex/condvar ring buffer.
package concurrency

import (
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/sqale-lang/sqale/gc"
	"github.com/sqale-lang/sqale/value"
)

// idsMu guards chanIDs: each chan/spawned thread gets a diagnostic UUID
// without value.ChanObj itself needing to carry one, since value has no
// dependency on package uuid.
var (
	idsMu   sync.Mutex
	chanIDs = map[*value.ChanObj]uuid.UUID{}
)

// NewChan allocates a channel value with the fixed capacity of 16 and
// tags it with a UUID for diagnostics.
func NewChan(c *gc.Collector) value.Value {
	v := value.NewChan(c)

	idsMu.Lock()
	chanIDs[v.Ch] = uuid.New()
	idsMu.Unlock()

	return v
}

// ChanID reports the diagnostic UUID assigned to ch by NewChan, or the zero
// UUID if ch was not allocated through this package (e.g. in a unit test
// that calls value.NewChan directly).
func ChanID(ch *value.ChanObj) uuid.UUID {
	idsMu.Lock()
	defer idsMu.Unlock()

	return chanIDs[ch]
}

// Send blocks until space is available in ch.
func Send(ch *value.ChanObj, v value.Value) {
	ch.Ch <- v
}

// Recv blocks until a value is available.
func Recv(ch *value.ChanObj) value.Value {
	return <-ch.Ch
}

// TryRecv returns immediately: the received value and true, or the zero
// value and false if ch was empty (SUPPLEMENTED FEATURES: `try-recv`).
func TryRecv(ch *value.ChanObj) (value.Value, bool) {
	select {
	case v := <-ch.Ch:
		return v, true
	default:
		return value.Value{}, false
	}
}

// Cap reports ch's fixed capacity (SUPPLEMENTED FEATURES: `chan-cap`).
func Cap(ch *value.ChanObj) int { return cap(ch.Ch) }

// Len reports how many values are currently queued in ch (SUPPLEMENTED
// FEATURES: `chan-len`).
func Len(ch *value.ChanObj) int { return len(ch.Ch) }

// Spawn starts fn as a detached, fire-and-forget goroutine. The Go
// runtime's M:N goroutine scheduler stands in for one-thread-per-spawn;
// nothing in the language surface distinguishes the two. The returned
// UUID tags the thread for panic-recovery diagnostics: spawned closures
// run detached with no cancellation, so an uncaught panic is logged by id
// rather than being allowed to take the rest of the VM down.
func Spawn(fn func()) uuid.UUID {
	id := uuid.New()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				fmt.Fprintf(os.Stderr, "sqale: thread %s panicked: %v\n", id, r)
			}
		}()

		fn()
	}()

	return id
}
