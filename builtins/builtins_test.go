package builtins

import (
	"bytes"
	"testing"

	"github.com/sqale-lang/sqale/env"
	"github.com/sqale-lang/sqale/gc"
	"github.com/sqale-lang/sqale/value"
)

func testGlobals(t *testing.T) (*env.Env, *gc.Collector, *bytes.Buffer) {
	t.Helper()

	c := gc.New()
	c.SetRootMarker(func(mark func(*gc.Obj)) {})

	e := env.New(nil)

	var out bytes.Buffer

	Register(e, c, &out)

	return e, c, &out
}

func call(t *testing.T, e *env.Env, name string, args ...value.Value) value.Value {
	t.Helper()

	b, ok := e.Lookup(name)
	if !ok {
		t.Fatalf("builtin %q not registered", name)
	}

	if b.V.Kind != value.Func {
		t.Fatalf("builtin %q is not a native function", name)
	}

	return b.V.Native.Fn(e, args)
}

func TestArithmeticHomogeneousKinds(t *testing.T) {
	e, _, _ := testGlobals(t)

	if got := call(t, e, "+", value.NewInt(40), value.NewInt(2)); got.I != 42 {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "*", value.NewFloat(1.5), value.NewFloat(2)); got.F != 3 {
		t.Fatalf("got %+v", got)
	}

	// Mixed kinds yield Unit.
	if got := call(t, e, "+", value.NewInt(1), value.NewFloat(2)); got.Kind != value.Unit {
		t.Fatalf("mixed-kind arithmetic must yield Unit, got %+v", got)
	}
}

func TestIntegerDivisionTruncatesAndZeroYieldsUnit(t *testing.T) {
	e, _, _ := testGlobals(t)

	if got := call(t, e, "/", value.NewInt(7), value.NewInt(2)); got.I != 3 {
		t.Fatalf("got %+v, want truncated 3", got)
	}

	if got := call(t, e, "/", value.NewInt(7), value.NewInt(0)); got.Kind != value.Unit {
		t.Fatalf("division by zero must yield Unit, got %+v", got)
	}

	if got := call(t, e, "%", value.NewInt(7), value.NewInt(0)); got.Kind != value.Unit {
		t.Fatalf("modulo by zero must yield Unit, got %+v", got)
	}
}

func TestSafeDivReturnsResult(t *testing.T) {
	e, _, _ := testGlobals(t)

	ok := call(t, e, "safe-div", value.NewInt(10), value.NewInt(2))
	if ok.Kind != value.Result || !ok.ResV.IsOk || ok.ResV.Val.I != 5 {
		t.Fatalf("got %+v", ok)
	}

	errv := call(t, e, "safe-div", value.NewInt(10), value.NewInt(0))
	if errv.Kind != value.Result || errv.ResV.IsOk {
		t.Fatalf("safe-div by zero must be an err, got %+v", errv)
	}
}

func TestComparisonAndPredicatesReturnFalseOnMisuse(t *testing.T) {
	e, _, _ := testGlobals(t)

	if got := call(t, e, "<", value.NewInt(1), value.NewInt(2)); !got.B {
		t.Fatalf("got %+v", got)
	}

	// Wrong kinds: predicate builtins report false rather than Unit.
	if got := call(t, e, "<", value.NewInt(1), value.NewFloat(2)); got.Kind != value.Bool || got.B {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "not", value.NewBool(false)); !got.B {
		t.Fatalf("got %+v", got)
	}
}

func TestEqualityOnStringsAndUnit(t *testing.T) {
	e, c, _ := testGlobals(t)

	if got := call(t, e, "=", value.NewStr(c, "hi"), value.NewStr(c, "hi")); !got.B {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "=", value.NewUnit(), value.NewUnit()); !got.B {
		t.Fatal("Unit must always equal Unit")
	}
}

func TestPrintSpaceSeparatesAndTerminatesLine(t *testing.T) {
	e, c, out := testGlobals(t)

	call(t, e, "print", value.NewInt(42))
	call(t, e, "print", value.NewStr(c, "a"), value.NewInt(1))

	if out.String() != "42\na 1\n" {
		t.Fatalf("got %q", out.String())
	}
}

func TestBitOps(t *testing.T) {
	e, _, _ := testGlobals(t)

	if got := call(t, e, "bit-and", value.NewInt(6), value.NewInt(3)); got.I != 2 {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "bit-or", value.NewInt(6), value.NewInt(3)); got.I != 7 {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "bit-xor", value.NewInt(6), value.NewInt(3)); got.I != 5 {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "shl", value.NewInt(1), value.NewInt(4)); got.I != 16 {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "shr", value.NewInt(16), value.NewInt(4)); got.I != 1 {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "bit-not", value.NewInt(0)); got.I != -1 {
		t.Fatalf("got %+v", got)
	}
}

func TestStringRoutines(t *testing.T) {
	e, c, _ := testGlobals(t)

	if got := call(t, e, "str-concat", value.NewStr(c, "foo"), value.NewStr(c, "bar")); got.Str.Data != "foobar" {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "str-len", value.NewStr(c, "abc")); got.I != 3 {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "str-slice", value.NewStr(c, "hello"), value.NewInt(1), value.NewInt(3)); got.Str.Data != "el" {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "str-index", value.NewStr(c, "hello"), value.NewStr(c, "ll")); got.I != 2 {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "str-index", value.NewStr(c, "hello"), value.NewStr(c, "zz")); got.I != -1 {
		t.Fatalf("got %+v", got)
	}

	fields := call(t, e, "str-split-ws", value.NewStr(c, " a  b\tc "))
	if fields.Kind != value.Vec || len(fields.VecV.Items) != 3 {
		t.Fatalf("got %+v", fields)
	}

	if got := call(t, e, "str-to-int", value.NewStr(c, "42")); got.I != 42 {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "str-to-int", value.NewStr(c, "nope")); got.Kind != value.Unit {
		t.Fatalf("unparsable int must yield Unit, got %+v", got)
	}

	if got := call(t, e, "int-to-str", value.NewInt(-7)); got.Str.Data != "-7" {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "float-to-str", value.NewFloat(1.5)); got.Str.Data != "1.5" {
		t.Fatalf("got %+v", got)
	}
}

func TestListHelpers(t *testing.T) {
	e, c, _ := testGlobals(t)

	lst := value.NewList(c, []value.Value{value.NewSymbol("+"), value.NewInt(1), value.NewInt(2)})

	if got := call(t, e, "list?", lst); !got.B {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "symbol?", value.NewSymbol("x")); !got.B {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "symbol=", value.NewSymbol("x"), value.NewSymbol("x")); !got.B {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "list-head", lst); got.Kind != value.Symbol || got.Sym != "+" {
		t.Fatalf("got %+v", got)
	}

	tail := call(t, e, "list-tail", lst)
	if tail.Kind != value.List || len(tail.ListV.Items) != 2 || tail.ListV.Items[0].I != 1 {
		t.Fatalf("got %+v", tail)
	}

	cons := call(t, e, "list-cons", value.NewInt(0), tail)
	if cons.Kind != value.List || len(cons.ListV.Items) != 3 || cons.ListV.Items[0].I != 0 {
		t.Fatalf("got %+v", cons)
	}

	app := call(t, e, "list-append", tail, tail)
	if app.Kind != value.List || len(app.ListV.Items) != 4 {
		t.Fatalf("got %+v", app)
	}
}

func TestStructOps(t *testing.T) {
	e, c, _ := testGlobals(t)

	s := call(t, e, "struct-new", value.NewStr(c, "Point"), value.NewInt(3), value.NewInt(4))
	if s.Kind != value.Struct || s.StructV.TypeName != "Point" {
		t.Fatalf("got %+v", s)
	}

	if got := call(t, e, "struct-get", s, value.NewInt(1)); got.I != 4 {
		t.Fatalf("got %+v", got)
	}

	call(t, e, "struct-set", s, value.NewInt(0), value.NewInt(9))

	if got := call(t, e, "struct-get", s, value.NewInt(0)); got.I != 9 {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "struct-get", s, value.NewInt(5)); got.Kind != value.Unit {
		t.Fatalf("out-of-range field must yield Unit, got %+v", got)
	}
}

func TestNotEqual(t *testing.T) {
	e, _, _ := testGlobals(t)

	if got := call(t, e, "!=", value.NewInt(1), value.NewInt(2)); !got.B {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "!=", value.NewInt(1), value.NewInt(1)); got.B {
		t.Fatalf("got %+v", got)
	}
}

func TestMinMaxNegAbs(t *testing.T) {
	e, _, _ := testGlobals(t)

	if got := call(t, e, "min", value.NewInt(3), value.NewInt(5)); got.I != 3 {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "max", value.NewInt(3), value.NewInt(5)); got.I != 5 {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "neg", value.NewInt(5)); got.I != -5 {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "abs", value.NewInt(-5)); got.I != 5 {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "mod", value.NewInt(7), value.NewInt(3)); got.I != 1 {
		t.Fatalf("got %+v", got)
	}
}

func TestLenIsPolymorphic(t *testing.T) {
	e, c, _ := testGlobals(t)

	if got := call(t, e, "len", value.NewStr(c, "abc")); got.I != 3 {
		t.Fatalf("got %+v", got)
	}

	v := call(t, e, "vec", value.NewInt(1), value.NewInt(2))
	if got := call(t, e, "len", v); got.I != 2 {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "len", value.NewInt(1)); got.Kind != value.Unit {
		t.Fatalf("len on a non-collection must yield Unit, got %+v", got)
	}
}

func TestVecOps(t *testing.T) {
	e, _, _ := testGlobals(t)

	v := call(t, e, "vec-new")

	call(t, e, "vec-push", v, value.NewInt(10))
	call(t, e, "vec-push", v, value.NewInt(20))

	if got := call(t, e, "vec-len", v); got.I != 2 {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "vec-get", v, value.NewInt(1)); got.I != 20 {
		t.Fatalf("got %+v", got)
	}

	call(t, e, "vec-set", v, value.NewInt(0), value.NewInt(99))

	if got := call(t, e, "vec-get", v, value.NewInt(0)); got.I != 99 {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "vec-pop", v); got.I != 20 {
		t.Fatalf("got %+v", got)
	}

	// Out-of-range access yields Unit.
	if got := call(t, e, "vec-get", v, value.NewInt(5)); got.Kind != value.Unit {
		t.Fatalf("got %+v", got)
	}
}

func TestMapOps(t *testing.T) {
	e, c, _ := testGlobals(t)

	m := call(t, e, "map-new")

	call(t, e, "map-set", m, value.NewStr(c, "k"), value.NewInt(1))
	call(t, e, "map-set", m, value.NewStr(c, "k"), value.NewInt(2))

	if got := call(t, e, "map-get", m, value.NewStr(c, "k")); got.I != 2 {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "map-len", m); got.I != 1 {
		t.Fatalf("got %+v", got)
	}
}

func TestOptionBuiltins(t *testing.T) {
	e, _, _ := testGlobals(t)

	s := call(t, e, "some", value.NewInt(5))
	n := call(t, e, "none")

	if got := call(t, e, "is-some", s); !got.B {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "is-none", n); !got.B {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "unwrap", s); got.I != 5 {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "unwrap-or", n, value.NewInt(9)); got.I != 9 {
		t.Fatalf("got %+v", got)
	}
}

func TestResultBuiltins(t *testing.T) {
	e, c, _ := testGlobals(t)

	okv := call(t, e, "ok", value.NewInt(1))
	errv := call(t, e, "err", value.NewStr(c, "boom"))

	if got := call(t, e, "is-ok", okv); !got.B {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "is-err", errv); !got.B {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "unwrap-err", errv); got.Str.Data != "boom" {
		t.Fatalf("got %+v", got)
	}
}

func TestStrAndTypeOf(t *testing.T) {
	e, _, _ := testGlobals(t)

	if got := call(t, e, "str", value.NewInt(42)); got.Str.Data != "42" {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "type-of", value.NewBool(true)); got.Str.Data != "Bool" {
		t.Fatalf("got %+v", got)
	}
}

func TestChannelBuiltins(t *testing.T) {
	e, _, _ := testGlobals(t)

	ch := call(t, e, "chan")
	if ch.Kind != value.Chan {
		t.Fatalf("got %+v", ch)
	}

	if got := call(t, e, "chan-cap", ch); got.I != int64(value.ChanCapacity) {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "try-recv", ch); got.Kind != value.Option || got.OptV.HasValue {
		t.Fatalf("try-recv on an empty channel must be none, got %+v", got)
	}

	call(t, e, "send", ch, value.NewInt(7))

	if got := call(t, e, "chan-len", ch); got.I != 1 {
		t.Fatalf("got %+v", got)
	}

	if got := call(t, e, "recv", ch); got.I != 7 {
		t.Fatalf("got %+v", got)
	}
}
