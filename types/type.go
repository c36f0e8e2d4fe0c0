// Package types implements SQALE's type representation and structural
// equality with Any-compatibility.
//
// Following the tagged-variant shape the rest of this module uses for the
// form tree (ast.Node) and the value universe (value.Value), Type is one
// struct carrying a Kind tag plus only the fields that Kind needs.
package types

import "strings"

type Kind int

const (
	Int Kind = iota
	Float
	Bool
	Str
	Unit
	Any
	Func
	Chan
	Vec
	Map
	Option
	Result
	Struct
	Enum
	// Error marks a form that failed to type-check. After a successful
	// check no expression node carries this Type.
	Error
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
	case Any:
		return "Any"
	case Func:
		return "Func"
	case Chan:
		return "Chan"
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
	case Enum:
		return "Enum"
	case Error:
		return "Error"
	default:
		return "?"
	}
}

// Type is SQALE's tagged type representation. Only the fields relevant to
// Kind are populated.
type Type struct {
	Kind Kind

	// Func
	Params []*Type
	Ret    *Type

	// Chan, Vec, Option element type
	Elem *Type

	// Map
	Key *Type
	Val *Type

	// Result
	Ok  *Type
	Err *Type

	// Struct, Enum. Nominal equality is by Name alone.
	Name         string
	FieldNames   []string
	FieldTypes   []*Type
	VariantNames []string
}

var (
	IntT   = &Type{Kind: Int}
	FloatT = &Type{Kind: Float}
	BoolT  = &Type{Kind: Bool}
	StrT   = &Type{Kind: Str}
	UnitT  = &Type{Kind: Unit}
	AnyT   = &Type{Kind: Any}
	ErrorT = &Type{Kind: Error}
)

func NewFunc(params []*Type, ret *Type) *Type {
	return &Type{Kind: Func, Params: params, Ret: ret}
}

func NewChan(elem *Type) *Type { return &Type{Kind: Chan, Elem: elem} }
func NewVec(elem *Type) *Type  { return &Type{Kind: Vec, Elem: elem} }

func NewMap(key, val *Type) *Type { return &Type{Kind: Map, Key: key, Val: val} }

func NewOption(elem *Type) *Type { return &Type{Kind: Option, Elem: elem} }

func NewResult(ok, err *Type) *Type { return &Type{Kind: Result, Ok: ok, Err: err} }

func NewStruct(name string, fieldNames []string, fieldTypes []*Type) *Type {
	return &Type{Kind: Struct, Name: name, FieldNames: fieldNames, FieldTypes: fieldTypes}
}

func NewEnum(name string, variantNames []string) *Type {
	return &Type{Kind: Enum, Name: name, VariantNames: variantNames}
}

// Eq is SQALE's type equality: either side Any makes it true;
// otherwise kinds must match and, recursively, so must every constructor
// argument. Struct/Enum compare nominally by Name.
func Eq(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}

	if a.Kind == Any || b.Kind == Any {
		return true
	}

	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case Func:
		if len(a.Params) != len(b.Params) {
			return false
		}

		for i := range a.Params {
			if !Eq(a.Params[i], b.Params[i]) {
				return false
			}
		}

		return Eq(a.Ret, b.Ret)
	case Chan, Vec, Option:
		return Eq(a.Elem, b.Elem)
	case Map:
		return Eq(a.Key, b.Key) && Eq(a.Val, b.Val)
	case Result:
		return Eq(a.Ok, b.Ok) && Eq(a.Err, b.Err)
	case Struct, Enum:
		return a.Name == b.Name
	default:
		// Int, Float, Bool, Str, Unit, Error: kind equality is enough.
		return true
	}
}

// String renders a Type the way it would be written in SQALE source,
// used in checker diagnostics.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind {
	case Func:
		var sb strings.Builder

		for _, p := range t.Params {
			sb.WriteString(p.String())
			sb.WriteByte(' ')
		}

		sb.WriteString("-> ")
		sb.WriteString(t.Ret.String())

		return "[" + sb.String() + "]"
	case Chan:
		return "[Chan " + t.Elem.String() + "]"
	case Vec:
		return "[Vec " + t.Elem.String() + "]"
	case Map:
		return "[Map " + t.Key.String() + " " + t.Val.String() + "]"
	case Option:
		return "[Option " + t.Elem.String() + "]"
	case Result:
		return "[Result " + t.Ok.String() + " " + t.Err.String() + "]"
	case Struct, Enum:
		return t.Name
	default:
		return t.Kind.String()
	}
}
