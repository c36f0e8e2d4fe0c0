// Package value implements SQALE's runtime value universe: a tagged
// variant paralleling package types, plus the GC-tracked heap bodies
// (String, Closure, List, Vector, Map, Option, Result, Struct) that all
// share an intrusive gc.Obj header.
package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sqale-lang/sqale/ast"
	"github.com/sqale-lang/sqale/gc"
	"github.com/sqale-lang/sqale/types"
)

type Kind int

const (
	Int Kind = iota
	Float
	Bool
	Str
	Unit
	Func
	Closure
	Chan
	Symbol
	List
	Vec
	Map
	Option
	Result
	Struct
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "Int"
	case Float:
		return "Float"
	case Bool:
		return "Bool"
	case Str:
		return "Str"
	case Unit:
		return "Unit"
	case Func:
		return "Func"
	case Closure:
		return "Closure"
	case Chan:
		return "Chan"
	case Symbol:
		return "Symbol"
	case List:
		return "List"
	case Vec:
		return "Vec"
	case Map:
		return "Map"
	case Option:
		return "Option"
	case Result:
		return "Result"
	case Struct:
		return "Struct"
	default:
		return "?"
	}
}

// Environment is the slice of env.Env's surface that a Closure needs. It is
// declared here, not in package env, so that value (ClosureObj.Env) and env
// (Env entries hold *Box) can each depend on the other's data without a
// Go import cycle: env imports value for Box/Value, and satisfies this
// interface structurally without value ever importing env.
type Environment interface {
	Lookup(name string) (*Box, bool)
	Child() Environment
	Define(name string, typ *types.Type, v Value) *Box
}

// NativeFn is a host-implemented builtin. env is the caller's
// environment; native functions rarely need it, but the evaluator passes
// it through uniformly with closures.
type NativeFn func(env Environment, args []Value) Value

// Box is the heap cell an environment entry points to, so that set! can
// mutate a binding in place.
type Box struct {
	V Value
}

// Value is SQALE's tagged runtime value. Only the fields relevant to Kind
// are populated.
type Value struct {
	Kind Kind

	I int64
	F float64
	B bool

	// Symbol. Go strings already carry their length, so Sym needs no
	// separate byte/length pair.
	Sym string

	Str     *StrObj
	Native  *NativeObj
	Clos    *ClosureObj
	Ch      *ChanObj
	ListV   *ListObj
	VecV    *VecObj
	MapV    *MapObj
	OptV    *OptionObj
	ResV    *ResultObj
	StructV *StructObj
}

// StrObj is a heap-allocated string body.
type StrObj struct {
	gc.Obj
	Data string
}

// NativeObj wraps a host function with its declared type. Native
// function values are owned by boxes held directly in the global
// environment and outlive normal values, so they are not registered with
// the collector at all.
type NativeObj struct {
	Name string
	Fn   NativeFn
	Type *types.Type
}

// ClosureObj is a user-defined function value: the unevaluated `fn` list
// node (living as long as its module) plus the environment captured at
// definition time.
type ClosureObj struct {
	gc.Obj
	FnNode *ast.Node
	Env    Environment
	Type   *types.Type
}

// ChanObj is a bounded FIFO channel: capacity is fixed at 16 and backed
// directly by a Go channel, whose own blocking send/receive semantics
// already provide send-blocks-until-space and recv-blocks-until-a-value
// without any extra bookkeeping.
type ChanObj struct {
	gc.Obj
	Ch chan Value
}

const ChanCapacity = 16

// ListObj is the runtime list used by quote/quasiquote and macros,
// structurally the same payload as Vector but conventionally treated as
// append-only/cons-like rather than index-mutated.
type ListObj struct {
	gc.Obj
	Items []Value
}

// VecObj is the user-facing mutable vector (`vec`, `vec-push`, ...).
type VecObj struct {
	gc.Obj
	Items []Value
}

// mapEntry is a linear-scan slot: SQALE map keys may be any Value
// (including ones with no natural Go hash, like a Vec), so equality-based
// linear scan is used instead of a native Go map.
type mapEntry struct {
	Key Value
	Val Value
}

type MapObj struct {
	gc.Obj
	entries []mapEntry
}

func (m *MapObj) Get(key Value) (Value, bool) {
	for _, e := range m.entries {
		if Equal(e.Key, key) {
			return e.Val, true
		}
	}

	return Value{Kind: Unit}, false
}

func (m *MapObj) Set(key, val Value) {
	for i, e := range m.entries {
		if Equal(e.Key, key) {
			m.entries[i].Val = val
			return
		}
	}

	m.entries = append(m.entries, mapEntry{Key: key, Val: val})
}

func (m *MapObj) Len() int { return len(m.entries) }

// OptionObj is `some`/`none`.
type OptionObj struct {
	gc.Obj
	HasValue bool
	Val      Value
}

// ResultObj is `ok`/`err`.
type ResultObj struct {
	gc.Obj
	IsOk bool
	Val  Value
}

// StructObj is one instance of a defstruct'd type.
type StructObj struct {
	gc.Obj
	TypeName   string
	FieldNames []string
	Fields     []Value
}

// Constructors. Heap-kind constructors take a *gc.Collector so every heap
// body is registered for collection at the moment it is created.

func NewInt(i int64) Value     { return Value{Kind: Int, I: i} }
func NewFloat(f float64) Value { return Value{Kind: Float, F: f} }
func NewBool(b bool) Value     { return Value{Kind: Bool, B: b} }
func NewUnit() Value           { return Value{Kind: Unit} }
func NewSymbol(s string) Value { return Value{Kind: Symbol, Sym: s} }

func NewStr(c *gc.Collector, s string) Value {
	o := &StrObj{Data: s}
	c.Register(&o.Obj, len(s)+16)

	return Value{Kind: Str, Str: o}
}

func NewNative(name string, fn NativeFn, typ *types.Type) Value {
	return Value{Kind: Func, Native: &NativeObj{Name: name, Fn: fn, Type: typ}}
}

func NewClosure(c *gc.Collector, fnNode *ast.Node, env Environment, typ *types.Type) Value {
	o := &ClosureObj{FnNode: fnNode, Env: env, Type: typ}
	o.MarkChildren = func(mark func(*gc.Obj)) {
		markEnvironment(env, mark)
	}
	c.Register(&o.Obj, 64)

	return Value{Kind: Closure, Clos: o}
}

func NewChan(c *gc.Collector) Value {
	o := &ChanObj{Ch: make(chan Value, ChanCapacity)}
	c.Register(&o.Obj, 128)

	return Value{Kind: Chan, Ch: o}
}

func NewList(c *gc.Collector, items []Value) Value {
	o := &ListObj{Items: items}
	o.MarkChildren = func(mark func(*gc.Obj)) { markAll(o.Items, mark) }
	c.Register(&o.Obj, 32+16*len(items))

	return Value{Kind: List, ListV: o}
}

func NewVec(c *gc.Collector) Value {
	o := &VecObj{}
	o.MarkChildren = func(mark func(*gc.Obj)) { markAll(o.Items, mark) }
	c.Register(&o.Obj, 32)

	return Value{Kind: Vec, VecV: o}
}

func NewMap(c *gc.Collector) Value {
	o := NewMapObj()
	o.MarkChildren = func(mark func(*gc.Obj)) {
		for _, e := range o.entries {
			markOne(e.Key, mark)
			markOne(e.Val, mark)
		}
	}
	c.Register(&o.Obj, 32)

	return Value{Kind: Map, MapV: o}
}

// NewMapObj exists so NewMap (above) can register a MarkChildren closure
// before handing the object to the collector.
func NewMapObj() *MapObj { return &MapObj{} }

func NewSome(c *gc.Collector, v Value) Value {
	o := &OptionObj{HasValue: true, Val: v}
	o.MarkChildren = func(mark func(*gc.Obj)) { markOne(v, mark) }
	c.Register(&o.Obj, 24)

	return Value{Kind: Option, OptV: o}
}

func NewNone(c *gc.Collector) Value {
	o := &OptionObj{}
	c.Register(&o.Obj, 24)

	return Value{Kind: Option, OptV: o}
}

func NewOk(c *gc.Collector, v Value) Value {
	o := &ResultObj{IsOk: true, Val: v}
	o.MarkChildren = func(mark func(*gc.Obj)) { markOne(v, mark) }
	c.Register(&o.Obj, 24)

	return Value{Kind: Result, ResV: o}
}

func NewErr(c *gc.Collector, v Value) Value {
	o := &ResultObj{Val: v}
	o.MarkChildren = func(mark func(*gc.Obj)) { markOne(v, mark) }
	c.Register(&o.Obj, 24)

	return Value{Kind: Result, ResV: o}
}

func NewStruct(c *gc.Collector, typeName string, fieldNames []string, fields []Value) Value {
	o := &StructObj{TypeName: typeName, FieldNames: fieldNames, Fields: fields}
	o.MarkChildren = func(mark func(*gc.Obj)) { markAll(o.Fields, mark) }
	c.Register(&o.Obj, 32+16*len(fields))

	return Value{Kind: Struct, StructV: o}
}

func markAll(vs []Value, mark func(*gc.Obj)) {
	for _, v := range vs {
		markOne(v, mark)
	}
}

// markOne marks the heap Obj (if any) a Value points at and follows its own
// children via gc.Obj.MarkChildren, which the constructors above wire up.
func markOne(v Value, mark func(*gc.Obj)) {
	switch v.Kind {
	case Str:
		mark(&v.Str.Obj)
	case Closure:
		mark(&v.Clos.Obj)
	case Chan:
		mark(&v.Ch.Obj)
	case List:
		mark(&v.ListV.Obj)
	case Vec:
		mark(&v.VecV.Obj)
	case Map:
		mark(&v.MapV.Obj)
	case Option:
		mark(&v.OptV.Obj)
	case Result:
		mark(&v.ResV.Obj)
	case Struct:
		mark(&v.StructV.Obj)
	}
}

// markEnvironment lets vm/env supply a root-marking function for a captured
// closure environment without this package importing env.
var markEnvironment = func(env Environment, mark func(*gc.Obj)) {}

// SetEnvironmentMarker installs the function used to mark a closure's
// captured environment. Called once per process by env.Init (run from
// package vm's init), since only env (not value) knows how to walk an Env
// chain.
func SetEnvironmentMarker(fn func(env Environment, mark func(*gc.Obj))) {
	markEnvironment = fn
}

// MarkValue exposes markOne to other packages (env, in particular) that need
// to mark every heap object a Value transitively references without
// reimplementing the per-Kind dispatch.
func MarkValue(v Value, mark func(*gc.Obj)) { markOne(v, mark) }

// Equal implements SQALE's runtime equality (`=`): byte-for-byte on
// strings, always-true on Unit.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case Int:
		return a.I == b.I
	case Float:
		return a.F == b.F
	case Bool:
		return a.B == b.B
	case Str:
		return a.Str.Data == b.Str.Data
	case Unit:
		return true
	case Symbol:
		return a.Sym == b.Sym
	default:
		return false
	}
}

// Truthy reports whether v counts as the Bool-true the evaluator's `if`,
// `while` and `cond` expansions test against. Only an actual Bool(true)
// is truthy.
func Truthy(v Value) bool { return v.Kind == Bool && v.B }

// String renders v for `print`/`str`/REPL echo.
func (v Value) String() string {
	switch v.Kind {
	case Int:
		return strconv.FormatInt(v.I, 10)
	case Float:
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	case Bool:
		if v.B {
			return "true"
		}

		return "false"
	case Str:
		return v.Str.Data
	case Unit:
		return "unit"
	case Symbol:
		return v.Sym
	case Func:
		return fmt.Sprintf("<native %s>", v.Native.Name)
	case Closure:
		return "<closure>"
	case Chan:
		return "<chan>"
	case List:
		return joinValues(v.ListV.Items)
	case Vec:
		return "[vec " + strings.Join(itemStrings(v.VecV.Items), " ") + "]"
	case Map:
		return fmt.Sprintf("<map len=%d>", v.MapV.Len())
	case Option:
		if v.OptV.HasValue {
			return "[some " + v.OptV.Val.String() + "]"
		}

		return "[none]"
	case Result:
		if v.ResV.IsOk {
			return "[ok " + v.ResV.Val.String() + "]"
		}

		return "[err " + v.ResV.Val.String() + "]"
	case Struct:
		return fmt.Sprintf("<%s %s>", v.StructV.TypeName, strings.Join(itemStrings(v.StructV.Fields), " "))
	default:
		return "?"
	}
}

func joinValues(vs []Value) string {
	return "[" + strings.Join(itemStrings(vs), " ") + "]"
}

func itemStrings(vs []Value) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}

	return out
}
