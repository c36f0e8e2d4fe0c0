// Package env implements SQALE's environment frames: a singly linked
// chain of entries, each a {name, type, value-box} triple.
package env

import (
	"github.com/sqale-lang/sqale/gc"
	"github.com/sqale-lang/sqale/types"
	"github.com/sqale-lang/sqale/value"
)

type entry struct {
	name string
	typ  *types.Type
	box  *value.Box
	next *entry
}

// Env is one frame. Lookup walks inner to outer; Define prepends to the
// current frame so shadowing works without disturbing outer bindings.
type Env struct {
	head   *entry
	parent *Env

	// Aux threads VM identity through native calls without this package
	// having to know the VM's type.
	Aux interface{}
}

// New creates a frame whose parent is parent (nil for the global frame).
func New(parent *Env) *Env {
	var aux interface{}
	if parent != nil {
		aux = parent.Aux
	}

	return &Env{parent: parent, Aux: aux}
}

// Child creates a new frame whose parent is e, satisfying
// value.Environment so a Closure can carry its captured scope without
// value importing env.
func (e *Env) Child() value.Environment { return New(e) }

// Define binds name to v with the given static type in the current frame,
// allocating a fresh Box, and returns the box so the evaluator can keep a
// direct handle to it. Bindings with no runtime value at all
// (defstruct/defenum type names) go through DefineType instead.
func (e *Env) Define(name string, typ *types.Type, v value.Value) *value.Box {
	b := &value.Box{V: v}
	e.head = &entry{name: name, typ: typ, box: b, next: e.head}

	return b
}

// DefineType binds name to typ with no value box. The type checker uses it
// for every binding it records: def, fn parameters, let, and the
// defstruct/defenum type-level bindings.
func (e *Env) DefineType(name string, typ *types.Type) {
	e.head = &entry{name: name, typ: typ, next: e.head}
}

// Lookup finds the box bound to name, walking inner frames to outer.
func (e *Env) Lookup(name string) (*value.Box, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		for en := cur.head; en != nil; en = en.next {
			if en.name == name {
				if en.box == nil {
					return nil, false
				}

				return en.box, true
			}
		}
	}

	return nil, false
}

// LookupType finds the static type bound to name (used by package check),
// walking inner frames to outer. It succeeds for both value bindings and
// type-only bindings made with DefineType.
func (e *Env) LookupType(name string) (*types.Type, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		for en := cur.head; en != nil; en = en.next {
			if en.name == name {
				return en.typ, true
			}
		}
	}

	return nil, false
}

// Names lists every name bound anywhere in e's frame chain, outer frames
// included, in inner-to-outer order. Used by the evaluator to suggest a
// likely-intended name after a lookup miss.
func (e *Env) Names() []string {
	var names []string

	for cur := e; cur != nil; cur = cur.parent {
		for en := cur.head; en != nil; en = en.next {
			names = append(names, en.name)
		}
	}

	return names
}

// Set overwrites the value of an already-bound name in place, through
// whichever frame in the chain owns it. It reports whether name was
// bound.
func (e *Env) Set(name string, v value.Value) bool {
	b, ok := e.Lookup(name)
	if !ok {
		return false
	}

	b.V = v

	return true
}

// markRoot marks every Value reachable from e and every outer frame,
// following each into the GC heap via value.MarkValue. Installed as
// value's cross-package environment marker (see Init).
func markRoot(e value.Environment, mark func(*gc.Obj)) {
	cur, ok := e.(*Env)
	if !ok {
		return
	}

	for ; cur != nil; cur = cur.parent {
		for en := cur.head; en != nil; en = en.next {
			if en.box != nil {
				value.MarkValue(en.box.V, mark)
			}
		}
	}
}

// MarkRoots marks every Value reachable from e, for use as (part of) a
// gc.Collector's root-marking callback; package vm wires this in for the
// global environment.
func MarkRoots(e *Env, mark func(*gc.Obj)) {
	markRoot(e, mark)
}

// Init wires markRoot into package value. Call once at process start
// (package vm's init does this) before any GC collection can run.
func Init() {
	value.SetEnvironmentMarker(markRoot)
}
