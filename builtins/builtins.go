// Package builtins registers SQALE's always-bound native functions: the
// arithmetic/comparison operators the evaluator assumes exist, print,
// bit ops, string routines, the vector/map/list/option/result/struct
// APIs, and the channel/thread and math natives delegated to packages
// concurrency and numeric.
package builtins

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sqale-lang/sqale/concurrency"
	"github.com/sqale-lang/sqale/env"
	"github.com/sqale-lang/sqale/eval"
	"github.com/sqale-lang/sqale/gc"
	"github.com/sqale-lang/sqale/numeric"
	"github.com/sqale-lang/sqale/types"
	"github.com/sqale-lang/sqale/value"
)

// Register binds every builtin into globals. out is where print writes
// (os.Stdout in production, a buffer in tests).
func Register(globals *env.Env, c *gc.Collector, out io.Writer) {
	def := func(name string, params []*types.Type, ret *types.Type, fn value.NativeFn) {
		v := value.NewNative(name, fn, types.NewFunc(params, ret))
		globals.Define(name, v.Native.Type, v)
	}

	registerArithmetic(def)
	registerBits(def)
	registerComparison(def)
	registerLogic(def)
	registerPrintAndIntrospection(def, out, c)
	registerStrings(def, c)
	registerVec(def, c)
	registerMap(def, c)
	registerList(def, c)
	registerOption(def, c)
	registerResult(def, c)
	registerStruct(def, c)
	registerChannelsAndThreads(def, c)
	registerNumeric(def)
}

// arity0Unit is the shared wrong-arity/wrong-kind fallback:
// value-producing builtins report misuse by returning Unit.
func arity0Unit() value.Value { return value.NewUnit() }

func numOp(a, b value.Value, i func(x, y int64) int64, f func(x, y float64) float64) value.Value {
	switch {
	case a.Kind == value.Int && b.Kind == value.Int:
		return value.NewInt(i(a.I, b.I))
	case a.Kind == value.Float && b.Kind == value.Float:
		return value.NewFloat(f(a.F, b.F))
	default:
		// Mixed operand kinds yield Unit.
		return arity0Unit()
	}
}

func registerArithmetic(def func(string, []*types.Type, *types.Type, value.NativeFn)) {
	def("+", []*types.Type{types.IntT, types.IntT}, types.IntT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 2 {
			return arity0Unit()
		}

		return numOp(a[0], a[1], func(x, y int64) int64 { return x + y }, func(x, y float64) float64 { return x + y })
	})

	def("-", []*types.Type{types.IntT, types.IntT}, types.IntT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 2 {
			return arity0Unit()
		}

		return numOp(a[0], a[1], func(x, y int64) int64 { return x - y }, func(x, y float64) float64 { return x - y })
	})

	def("*", []*types.Type{types.IntT, types.IntT}, types.IntT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 2 {
			return arity0Unit()
		}

		return numOp(a[0], a[1], func(x, y int64) int64 { return x * y }, func(x, y float64) float64 { return x * y })
	})

	// Integer division/modulo by zero never panics the host. At this
	// bare-arithmetic layer it surfaces as Unit like any other builtin
	// misuse; callers that need the recoverable form use `safe-div`
	// (registerResult).
	def("/", []*types.Type{types.IntT, types.IntT}, types.IntT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 2 {
			return arity0Unit()
		}

		if a[0].Kind == value.Int && a[1].Kind == value.Int {
			if a[1].I == 0 {
				return arity0Unit()
			}

			return value.NewInt(a[0].I / a[1].I)
		}

		return numOp(a[0], a[1], func(x, y int64) int64 { return x / y }, func(x, y float64) float64 { return x / y })
	})

	mod := func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 2 || a[0].Kind != value.Int || a[1].Kind != value.Int {
			return arity0Unit()
		}

		if a[1].I == 0 {
			return arity0Unit()
		}

		return value.NewInt(a[0].I % a[1].I)
	}

	// Both spellings are bound.
	def("%", []*types.Type{types.IntT, types.IntT}, types.IntT, mod)
	def("mod", []*types.Type{types.IntT, types.IntT}, types.IntT, mod)

	def("neg", []*types.Type{types.IntT}, types.IntT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 1 || a[0].Kind != value.Int {
			return arity0Unit()
		}

		return value.NewInt(-a[0].I)
	})

	def("abs", []*types.Type{types.IntT}, types.IntT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 1 || a[0].Kind != value.Int {
			return arity0Unit()
		}

		if a[0].I < 0 {
			return value.NewInt(-a[0].I)
		}

		return a[0]
	})

	def("min", []*types.Type{types.IntT, types.IntT}, types.IntT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 2 {
			return arity0Unit()
		}

		return numOp(a[0], a[1],
			func(x, y int64) int64 {
				if x < y {
					return x
				}
				return y
			},
			func(x, y float64) float64 {
				if x < y {
					return x
				}
				return y
			})
	})

	def("max", []*types.Type{types.IntT, types.IntT}, types.IntT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 2 {
			return arity0Unit()
		}

		return numOp(a[0], a[1],
			func(x, y int64) int64 {
				if x > y {
					return x
				}
				return y
			},
			func(x, y float64) float64 {
				if x > y {
					return x
				}
				return y
			})
	})
}

func registerBits(def func(string, []*types.Type, *types.Type, value.NativeFn)) {
	bin := func(name string, fn func(x, y int64) int64) {
		def(name, []*types.Type{types.IntT, types.IntT}, types.IntT, func(_ value.Environment, a []value.Value) value.Value {
			if len(a) != 2 || a[0].Kind != value.Int || a[1].Kind != value.Int {
				return arity0Unit()
			}

			return value.NewInt(fn(a[0].I, a[1].I))
		})
	}

	bin("bit-and", func(x, y int64) int64 { return x & y })
	bin("bit-or", func(x, y int64) int64 { return x | y })
	bin("bit-xor", func(x, y int64) int64 { return x ^ y })
	bin("shl", func(x, y int64) int64 {
		if y < 0 || y > 63 {
			return 0
		}
		return x << uint(y)
	})
	bin("shr", func(x, y int64) int64 {
		if y < 0 || y > 63 {
			return 0
		}
		return x >> uint(y)
	})

	def("bit-not", []*types.Type{types.IntT}, types.IntT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 1 || a[0].Kind != value.Int {
			return arity0Unit()
		}

		return value.NewInt(^a[0].I)
	})
}

func registerComparison(def func(string, []*types.Type, *types.Type, value.NativeFn)) {
	cmp := func(name string, i func(x, y int64) bool, f func(x, y float64) bool) {
		def(name, []*types.Type{types.IntT, types.IntT}, types.BoolT, func(_ value.Environment, a []value.Value) value.Value {
			if len(a) != 2 {
				return value.NewBool(false)
			}

			switch {
			case a[0].Kind == value.Int && a[1].Kind == value.Int:
				return value.NewBool(i(a[0].I, a[1].I))
			case a[0].Kind == value.Float && a[1].Kind == value.Float:
				return value.NewBool(f(a[0].F, a[1].F))
			default:
				return value.NewBool(false)
			}
		})
	}

	cmp("<", func(x, y int64) bool { return x < y }, func(x, y float64) bool { return x < y })
	cmp(">", func(x, y int64) bool { return x > y }, func(x, y float64) bool { return x > y })
	cmp("<=", func(x, y int64) bool { return x <= y }, func(x, y float64) bool { return x <= y })
	cmp(">=", func(x, y int64) bool { return x >= y }, func(x, y float64) bool { return x >= y })

	def("=", []*types.Type{types.AnyT, types.AnyT}, types.BoolT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 2 {
			return value.NewBool(false)
		}

		return value.NewBool(value.Equal(a[0], a[1]))
	})

	def("!=", []*types.Type{types.AnyT, types.AnyT}, types.BoolT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 2 {
			return value.NewBool(false)
		}

		return value.NewBool(!value.Equal(a[0], a[1]))
	})
}

func registerLogic(def func(string, []*types.Type, *types.Type, value.NativeFn)) {
	def("not", []*types.Type{types.BoolT}, types.BoolT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 1 || a[0].Kind != value.Bool {
			return value.NewBool(false)
		}

		return value.NewBool(!a[0].B)
	})

	def("and", []*types.Type{types.BoolT, types.BoolT}, types.BoolT, func(_ value.Environment, a []value.Value) value.Value {
		for _, v := range a {
			if !value.Truthy(v) {
				return value.NewBool(false)
			}
		}

		return value.NewBool(true)
	})

	def("or", []*types.Type{types.BoolT, types.BoolT}, types.BoolT, func(_ value.Environment, a []value.Value) value.Value {
		for _, v := range a {
			if value.Truthy(v) {
				return value.NewBool(true)
			}
		}

		return value.NewBool(false)
	})
}

func registerPrintAndIntrospection(def func(string, []*types.Type, *types.Type, value.NativeFn), out io.Writer, c *gc.Collector) {
	if out == nil {
		out = os.Stdout
	}

	// print renders its arguments space-separated and terminates the
	// line.
	def("print", []*types.Type{types.AnyT}, types.UnitT, func(_ value.Environment, a []value.Value) value.Value {
		for i, v := range a {
			if i > 0 {
				fmt.Fprint(out, " ")
			}

			fmt.Fprint(out, v.String())
		}

		fmt.Fprintln(out)

		return value.NewUnit()
	})

	def("len", []*types.Type{types.AnyT}, types.IntT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 1 {
			return arity0Unit()
		}

		switch a[0].Kind {
		case value.Str:
			return value.NewInt(int64(len(a[0].Str.Data)))
		case value.Vec:
			return value.NewInt(int64(len(a[0].VecV.Items)))
		case value.List:
			return value.NewInt(int64(len(a[0].ListV.Items)))
		case value.Map:
			return value.NewInt(int64(a[0].MapV.Len()))
		default:
			return arity0Unit()
		}
	})

	def("str", []*types.Type{types.AnyT}, types.StrT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 1 {
			return value.NewStr(c, "")
		}

		return value.NewStr(c, a[0].String())
	})

	def("type-of", []*types.Type{types.AnyT}, types.StrT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 1 {
			return value.NewStr(c, "")
		}

		return value.NewStr(c, a[0].Kind.String())
	})
}

func registerVec(def func(string, []*types.Type, *types.Type, value.NativeFn), c *gc.Collector) {
	vecT := types.NewVec(types.AnyT)

	def("vec", []*types.Type{}, vecT, func(_ value.Environment, a []value.Value) value.Value {
		v := value.NewVec(c)
		v.VecV.Items = append(v.VecV.Items, a...)

		return v
	})

	def("vec-new", []*types.Type{}, vecT, func(_ value.Environment, a []value.Value) value.Value {
		return value.NewVec(c)
	})

	def("vec-push", []*types.Type{vecT, types.AnyT}, types.UnitT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 2 || a[0].Kind != value.Vec {
			return value.NewUnit()
		}

		a[0].VecV.Items = append(a[0].VecV.Items, a[1])

		return value.NewUnit()
	})

	def("vec-pop", []*types.Type{vecT}, types.AnyT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 1 || a[0].Kind != value.Vec || len(a[0].VecV.Items) == 0 {
			return value.NewUnit()
		}

		items := a[0].VecV.Items
		last := items[len(items)-1]
		a[0].VecV.Items = items[:len(items)-1]

		return last
	})

	def("vec-get", []*types.Type{vecT, types.IntT}, types.AnyT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 2 || a[0].Kind != value.Vec || a[1].Kind != value.Int {
			return value.NewUnit()
		}

		idx := int(a[1].I)
		if idx < 0 || idx >= len(a[0].VecV.Items) {
			return value.NewUnit()
		}

		return a[0].VecV.Items[idx]
	})

	def("vec-set", []*types.Type{vecT, types.IntT, types.AnyT}, types.UnitT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 3 || a[0].Kind != value.Vec || a[1].Kind != value.Int {
			return value.NewUnit()
		}

		idx := int(a[1].I)
		if idx < 0 || idx >= len(a[0].VecV.Items) {
			return value.NewUnit()
		}

		a[0].VecV.Items[idx] = a[2]

		return value.NewUnit()
	})

	def("vec-len", []*types.Type{vecT}, types.IntT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 1 || a[0].Kind != value.Vec {
			return arity0Unit()
		}

		return value.NewInt(int64(len(a[0].VecV.Items)))
	})
}

func registerMap(def func(string, []*types.Type, *types.Type, value.NativeFn), c *gc.Collector) {
	mapT := types.NewMap(types.AnyT, types.AnyT)

	def("map-new", []*types.Type{}, mapT, func(_ value.Environment, a []value.Value) value.Value {
		return value.NewMap(c)
	})

	def("map-set", []*types.Type{mapT, types.AnyT, types.AnyT}, types.UnitT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 3 || a[0].Kind != value.Map {
			return value.NewUnit()
		}

		a[0].MapV.Set(a[1], a[2])

		return value.NewUnit()
	})

	def("map-get", []*types.Type{mapT, types.AnyT}, types.AnyT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 2 || a[0].Kind != value.Map {
			return value.NewUnit()
		}

		v, _ := a[0].MapV.Get(a[1])

		return v
	})

	def("map-len", []*types.Type{mapT}, types.IntT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 1 || a[0].Kind != value.Map {
			return arity0Unit()
		}

		return value.NewInt(int64(a[0].MapV.Len()))
	})
}

// registerList binds the runtime-list helpers user macros lean on to pick
// apart and rebuild quoted forms: predicates, accessors, cons and append.
func registerList(def func(string, []*types.Type, *types.Type, value.NativeFn), c *gc.Collector) {
	def("list?", []*types.Type{types.AnyT}, types.BoolT, func(_ value.Environment, a []value.Value) value.Value {
		return value.NewBool(len(a) == 1 && a[0].Kind == value.List)
	})

	def("symbol?", []*types.Type{types.AnyT}, types.BoolT, func(_ value.Environment, a []value.Value) value.Value {
		return value.NewBool(len(a) == 1 && a[0].Kind == value.Symbol)
	})

	def("symbol=", []*types.Type{types.AnyT, types.AnyT}, types.BoolT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 2 || a[0].Kind != value.Symbol || a[1].Kind != value.Symbol {
			return value.NewBool(false)
		}

		return value.NewBool(a[0].Sym == a[1].Sym)
	})

	def("list-len", []*types.Type{types.AnyT}, types.IntT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 1 || a[0].Kind != value.List {
			return arity0Unit()
		}

		return value.NewInt(int64(len(a[0].ListV.Items)))
	})

	def("list-get", []*types.Type{types.AnyT, types.IntT}, types.AnyT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 2 || a[0].Kind != value.List || a[1].Kind != value.Int {
			return value.NewUnit()
		}

		idx := int(a[1].I)
		if idx < 0 || idx >= len(a[0].ListV.Items) {
			return value.NewUnit()
		}

		return a[0].ListV.Items[idx]
	})

	def("list-head", []*types.Type{types.AnyT}, types.AnyT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 1 || a[0].Kind != value.List || len(a[0].ListV.Items) == 0 {
			return value.NewUnit()
		}

		return a[0].ListV.Items[0]
	})

	def("list-tail", []*types.Type{types.AnyT}, types.AnyT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 1 || a[0].Kind != value.List || len(a[0].ListV.Items) == 0 {
			return value.NewUnit()
		}

		rest := make([]value.Value, len(a[0].ListV.Items)-1)
		copy(rest, a[0].ListV.Items[1:])

		return value.NewList(c, rest)
	})

	def("list-cons", []*types.Type{types.AnyT, types.AnyT}, types.AnyT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 2 || a[1].Kind != value.List {
			return value.NewUnit()
		}

		items := make([]value.Value, 0, len(a[1].ListV.Items)+1)
		items = append(items, a[0])
		items = append(items, a[1].ListV.Items...)

		return value.NewList(c, items)
	})

	def("list-append", []*types.Type{types.AnyT, types.AnyT}, types.AnyT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 2 || a[0].Kind != value.List || a[1].Kind != value.List {
			return value.NewUnit()
		}

		items := make([]value.Value, 0, len(a[0].ListV.Items)+len(a[1].ListV.Items))
		items = append(items, a[0].ListV.Items...)
		items = append(items, a[1].ListV.Items...)

		return value.NewList(c, items)
	})
}

func registerStrings(def func(string, []*types.Type, *types.Type, value.NativeFn), c *gc.Collector) {
	def("str-concat", []*types.Type{types.StrT, types.StrT}, types.StrT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 2 || a[0].Kind != value.Str || a[1].Kind != value.Str {
			return arity0Unit()
		}

		return value.NewStr(c, a[0].Str.Data+a[1].Str.Data)
	})

	def("str-len", []*types.Type{types.StrT}, types.IntT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 1 || a[0].Kind != value.Str {
			return arity0Unit()
		}

		return value.NewInt(int64(len(a[0].Str.Data)))
	})

	def("str-slice", []*types.Type{types.StrT, types.IntT, types.IntT}, types.StrT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 3 || a[0].Kind != value.Str || a[1].Kind != value.Int || a[2].Kind != value.Int {
			return arity0Unit()
		}

		s := a[0].Str.Data

		lo, hi := int(a[1].I), int(a[2].I)
		if lo < 0 {
			lo = 0
		}

		if hi > len(s) {
			hi = len(s)
		}

		if lo > hi {
			return value.NewStr(c, "")
		}

		return value.NewStr(c, s[lo:hi])
	})

	def("str-index", []*types.Type{types.StrT, types.StrT}, types.IntT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 2 || a[0].Kind != value.Str || a[1].Kind != value.Str {
			return arity0Unit()
		}

		return value.NewInt(int64(strings.Index(a[0].Str.Data, a[1].Str.Data)))
	})

	def("str-split-ws", []*types.Type{types.StrT}, types.NewVec(types.StrT), func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 1 || a[0].Kind != value.Str {
			return arity0Unit()
		}

		v := value.NewVec(c)
		for _, field := range strings.Fields(a[0].Str.Data) {
			v.VecV.Items = append(v.VecV.Items, value.NewStr(c, field))
		}

		return v
	})

	def("str-to-int", []*types.Type{types.StrT}, types.IntT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 1 || a[0].Kind != value.Str {
			return arity0Unit()
		}

		n, err := strconv.ParseInt(strings.TrimSpace(a[0].Str.Data), 10, 64)
		if err != nil {
			return arity0Unit()
		}

		return value.NewInt(n)
	})

	def("int-to-str", []*types.Type{types.IntT}, types.StrT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 1 || a[0].Kind != value.Int {
			return arity0Unit()
		}

		return value.NewStr(c, strconv.FormatInt(a[0].I, 10))
	})

	def("str-to-float", []*types.Type{types.StrT}, types.FloatT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 1 || a[0].Kind != value.Str {
			return arity0Unit()
		}

		f, err := strconv.ParseFloat(strings.TrimSpace(a[0].Str.Data), 64)
		if err != nil {
			return arity0Unit()
		}

		return value.NewFloat(f)
	})

	def("float-to-str", []*types.Type{types.FloatT}, types.StrT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 1 || a[0].Kind != value.Float {
			return arity0Unit()
		}

		return value.NewStr(c, strconv.FormatFloat(a[0].F, 'g', -1, 64))
	})
}

// registerStruct binds the positional struct constructors and accessors:
// struct-new takes the type name followed by field values in declaration
// order, struct-get/struct-set address fields by index.
func registerStruct(def func(string, []*types.Type, *types.Type, value.NativeFn), c *gc.Collector) {
	def("struct-new", []*types.Type{types.StrT}, types.AnyT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) < 1 || a[0].Kind != value.Str {
			return value.NewUnit()
		}

		fields := make([]value.Value, len(a)-1)
		copy(fields, a[1:])

		return value.NewStruct(c, a[0].Str.Data, nil, fields)
	})

	def("struct-get", []*types.Type{types.AnyT, types.IntT}, types.AnyT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 2 || a[0].Kind != value.Struct || a[1].Kind != value.Int {
			return value.NewUnit()
		}

		idx := int(a[1].I)
		if idx < 0 || idx >= len(a[0].StructV.Fields) {
			return value.NewUnit()
		}

		return a[0].StructV.Fields[idx]
	})

	def("struct-set", []*types.Type{types.AnyT, types.IntT, types.AnyT}, types.UnitT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 3 || a[0].Kind != value.Struct || a[1].Kind != value.Int {
			return value.NewUnit()
		}

		idx := int(a[1].I)
		if idx < 0 || idx >= len(a[0].StructV.Fields) {
			return value.NewUnit()
		}

		a[0].StructV.Fields[idx] = a[2]

		return value.NewUnit()
	})
}

func registerOption(def func(string, []*types.Type, *types.Type, value.NativeFn), c *gc.Collector) {
	optT := types.NewOption(types.AnyT)

	def("some", []*types.Type{types.AnyT}, optT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 1 {
			return value.NewNone(c)
		}

		return value.NewSome(c, a[0])
	})

	def("none", []*types.Type{}, optT, func(_ value.Environment, a []value.Value) value.Value {
		return value.NewNone(c)
	})

	def("is-some", []*types.Type{optT}, types.BoolT, func(_ value.Environment, a []value.Value) value.Value {
		return value.NewBool(len(a) == 1 && a[0].Kind == value.Option && a[0].OptV.HasValue)
	})

	def("is-none", []*types.Type{optT}, types.BoolT, func(_ value.Environment, a []value.Value) value.Value {
		return value.NewBool(len(a) == 1 && a[0].Kind == value.Option && !a[0].OptV.HasValue)
	})

	def("unwrap", []*types.Type{optT}, types.AnyT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 1 || a[0].Kind != value.Option || !a[0].OptV.HasValue {
			return value.NewUnit()
		}

		return a[0].OptV.Val
	})

	def("unwrap-or", []*types.Type{optT, types.AnyT}, types.AnyT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 2 {
			return value.NewUnit()
		}

		if a[0].Kind == value.Option && a[0].OptV.HasValue {
			return a[0].OptV.Val
		}

		return a[1]
	})
}

func registerResult(def func(string, []*types.Type, *types.Type, value.NativeFn), c *gc.Collector) {
	resT := types.NewResult(types.AnyT, types.AnyT)

	def("ok", []*types.Type{types.AnyT}, resT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 1 {
			return value.NewUnit()
		}

		return value.NewOk(c, a[0])
	})

	def("err", []*types.Type{types.AnyT}, resT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 1 {
			return value.NewUnit()
		}

		return value.NewErr(c, a[0])
	})

	def("is-ok", []*types.Type{resT}, types.BoolT, func(_ value.Environment, a []value.Value) value.Value {
		return value.NewBool(len(a) == 1 && a[0].Kind == value.Result && a[0].ResV.IsOk)
	})

	def("is-err", []*types.Type{resT}, types.BoolT, func(_ value.Environment, a []value.Value) value.Value {
		return value.NewBool(len(a) == 1 && a[0].Kind == value.Result && !a[0].ResV.IsOk)
	})

	def("unwrap-err", []*types.Type{resT}, types.AnyT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 1 || a[0].Kind != value.Result || a[0].ResV.IsOk {
			return value.NewUnit()
		}

		return a[0].ResV.Val
	})

	def("safe-div", []*types.Type{types.IntT, types.IntT}, resT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 2 || a[0].Kind != value.Int || a[1].Kind != value.Int {
			return value.NewErr(c, value.NewStr(c, "safe-div: wrong argument kinds"))
		}

		if a[1].I == 0 {
			return value.NewErr(c, value.NewStr(c, "division by zero"))
		}

		return value.NewOk(c, value.NewInt(a[0].I/a[1].I))
	})
}

func registerChannelsAndThreads(def func(string, []*types.Type, *types.Type, value.NativeFn), c *gc.Collector) {
	chanT := types.NewChan(types.AnyT)

	def("chan", []*types.Type{}, chanT, func(_ value.Environment, a []value.Value) value.Value {
		return concurrency.NewChan(c)
	})

	def("send", []*types.Type{chanT, types.AnyT}, types.UnitT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 2 || a[0].Kind != value.Chan {
			return value.NewUnit()
		}

		concurrency.Send(a[0].Ch, a[1])

		return value.NewUnit()
	})

	def("recv", []*types.Type{chanT}, types.AnyT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 1 || a[0].Kind != value.Chan {
			return value.NewUnit()
		}

		return concurrency.Recv(a[0].Ch)
	})

	def("try-recv", []*types.Type{chanT}, types.NewOption(types.AnyT), func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 1 || a[0].Kind != value.Chan {
			return value.NewNone(c)
		}

		v, ok := concurrency.TryRecv(a[0].Ch)
		if !ok {
			return value.NewNone(c)
		}

		return value.NewSome(c, v)
	})

	def("chan-cap", []*types.Type{chanT}, types.IntT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 1 || a[0].Kind != value.Chan {
			return arity0Unit()
		}

		return value.NewInt(int64(concurrency.Cap(a[0].Ch)))
	})

	def("chan-len", []*types.Type{chanT}, types.IntT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 1 || a[0].Kind != value.Chan {
			return arity0Unit()
		}

		return value.NewInt(int64(concurrency.Len(a[0].Ch)))
	})

	def("spawn", []*types.Type{types.NewFunc(nil, types.UnitT)}, types.UnitT, func(e value.Environment, a []value.Value) value.Value {
		if len(a) != 1 || a[0].Kind != value.Closure {
			return value.NewUnit()
		}

		clos := a[0]

		concurrency.Spawn(func() {
			eval.Apply(clos, nil, nil, c)
		})

		return value.NewUnit()
	})
}

func registerNumeric(def func(string, []*types.Type, *types.Type, value.NativeFn)) {
	unary := func(name string, fn func(float64) (float64, bool)) {
		def(name, []*types.Type{types.FloatT}, types.FloatT, func(_ value.Environment, a []value.Value) value.Value {
			if len(a) != 1 || a[0].Kind != value.Float {
				return arity0Unit()
			}

			r, ok := fn(a[0].F)
			if !ok {
				return arity0Unit()
			}

			return value.NewFloat(r)
		})
	}

	unary("sqrt", numeric.Sqrt)
	unary("floor", numeric.Floor)
	unary("ceil", numeric.Ceil)
	unary("round", numeric.Round)

	def("pow", []*types.Type{types.FloatT, types.FloatT}, types.FloatT, func(_ value.Environment, a []value.Value) value.Value {
		if len(a) != 2 || a[0].Kind != value.Float || a[1].Kind != value.Float {
			return arity0Unit()
		}

		r, ok := numeric.Pow(a[0].F, a[1].F)
		if !ok {
			return arity0Unit()
		}

		return value.NewFloat(r)
	})
}
