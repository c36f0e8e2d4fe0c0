// Package check implements SQALE's type checker: a top-down,
// environment-passing walk that annotates every expression node's Type
// field and fails the whole program at the first ill-typed top-level
// form.
package check

import (
	"fmt"

	"github.com/sqale-lang/sqale/ast"
	"github.com/sqale-lang/sqale/env"
	"github.com/sqale-lang/sqale/lexer"
	"github.com/sqale-lang/sqale/types"
)

// Error reports a type-checking failure against a specific top-level
// form, by index and head symbol. It unwraps to a positional error so
// lexer.Explain can render the failing form with a source caret.
type Error struct {
	FormIndex int
	Head      string
	Msg       string

	cause *lexer.PosError
}

func (e *Error) Error() string {
	if e.Head != "" {
		return fmt.Sprintf("type error in top-level form %d (%s): %s", e.FormIndex, e.Head, e.Msg)
	}

	return fmt.Sprintf("type error in top-level form %d: %s", e.FormIndex, e.Msg)
}

func (e *Error) Unwrap() error {
	if e.cause == nil {
		return nil
	}

	return e.cause
}

// CheckProgram checks every top-level form of top (the synthetic LIST
// ParseTopLevel/macro expansion produced) in order, stopping at the first
// failure.
func CheckProgram(top *ast.Node, e *env.Env) error {
	for i, form := range top.Children {
		if _, err := Check(form, e); err != nil {
			return &Error{
				FormIndex: i,
				Head:      form.Head(),
				Msg:       err.Error(),
				cause:     lexer.NewPosError(form, err.Error()),
			}
		}
	}

	return nil
}

// Check type-checks one form under e, annotates n.Type, and returns it.
func Check(n *ast.Node, e *env.Env) (*types.Type, error) {
	t, err := check(n, e)
	if err != nil {
		n.Type = types.ErrorT
		return nil, err
	}

	n.Type = t

	return t, nil
}

func check(n *ast.Node, e *env.Env) (*types.Type, error) {
	switch n.Kind {
	case ast.INT:
		return types.IntT, nil
	case ast.FLOAT:
		return types.FloatT, nil
	case ast.BOOL:
		return types.BoolT, nil
	case ast.STRING:
		return types.StrT, nil
	case ast.SYMBOL:
		t, ok := e.LookupType(n.Sym)
		if !ok {
			return nil, fmt.Errorf("unbound name %q", n.Sym)
		}

		return t, nil
	case ast.LIST:
		return checkList(n, e)
	default:
		return nil, fmt.Errorf("unrecognized form kind %s", n.Kind)
	}
}

func checkList(n *ast.Node, e *env.Env) (*types.Type, error) {
	if len(n.Children) == 0 {
		return types.UnitT, nil
	}

	switch n.Head() {
	case "def":
		return checkDef(n, e)
	case "fn":
		return checkFn(n, e)
	case "let":
		return checkLet(n, e)
	case "if":
		return checkIf(n, e)
	case "do":
		return checkDo(n, e)
	case "while":
		return checkWhile(n, e)
	case "set!":
		return checkSet(n, e)
	case "quote", "quasiquote":
		return types.AnyT, nil
	case "defstruct":
		return checkDefstruct(n, e)
	case "defenum":
		return checkDefenum(n, e)
	case "defmacro":
		return types.UnitT, nil
	case "import":
		return types.UnitT, nil
	default:
		return checkCall(n, e)
	}
}

// checkDef handles `[def name : Type expr]`; the ':' marker is an ordinary
// symbol child, so the form carries five children.
func checkDef(n *ast.Node, e *env.Env) (*types.Type, error) {
	if len(n.Children) != 5 || !n.Children[2].IsSymbol(":") {
		return nil, fmt.Errorf("def requires [def name : Type expr]")
	}

	name := n.Children[1].Sym

	declared, err := ParseTypeExpr(n.Children[3], e)
	if err != nil {
		return nil, err
	}

	// Bind name to its declared type before checking expr, not after: a
	// top-level def's type is explicit in the annotation, so a
	// self-recursive `fn` must see its own binding while its body is
	// being checked.
	e.DefineType(name, declared)

	exprType, err := Check(n.Children[4], e)
	if err != nil {
		return nil, err
	}

	if !types.Eq(exprType, declared) {
		return nil, fmt.Errorf("def %s: expression type %s does not match declared %s", name, exprType, declared)
	}

	return types.UnitT, nil
}

// checkFn handles `[fn [[p : T] …] : R body…]`.
func checkFn(n *ast.Node, e *env.Env) (*types.Type, error) {
	if len(n.Children) < 3 {
		return nil, fmt.Errorf("fn requires [fn [params] : R body...]")
	}

	params := n.Children[1]

	var paramTypes []*types.Type

	child := env.New(e)

	for _, p := range params.Children {
		// p is [name : T]
		if len(p.Children) != 3 {
			return nil, fmt.Errorf("malformed fn parameter %s", p)
		}

		pname := p.Children[0].Sym

		pt, err := ParseTypeExpr(p.Children[2], e)
		if err != nil {
			return nil, err
		}

		paramTypes = append(paramTypes, pt)
		child.DefineType(pname, pt)
	}

	if n.Children[2].Sym != ":" {
		return nil, fmt.Errorf("fn return type must follow ':'")
	}

	retType, err := ParseTypeExpr(n.Children[3], e)
	if err != nil {
		return nil, err
	}

	body := n.Children[4:]
	if len(body) == 0 {
		return nil, fmt.Errorf("fn requires at least one body form")
	}

	var last *types.Type

	for _, b := range body {
		last, err = Check(b, child)
		if err != nil {
			return nil, err
		}
	}

	if !types.Eq(last, retType) {
		return nil, fmt.Errorf("fn: last body type %s does not match declared return %s", last, retType)
	}

	return types.NewFunc(paramTypes, retType), nil
}

// checkLet handles `[let [[name (: T)? expr] …] body…]`.
func checkLet(n *ast.Node, e *env.Env) (*types.Type, error) {
	if len(n.Children) < 2 {
		return nil, fmt.Errorf("let requires [let [bindings] body...]")
	}

	child := env.New(e)

	for _, b := range n.Children[1].Children {
		var (
			name string
			want *types.Type
			expr *ast.Node
		)

		switch {
		case len(b.Children) == 2:
			name = b.Children[0].Sym
			expr = b.Children[1]
		case len(b.Children) == 4 && b.Children[1].IsSymbol(":"):
			name = b.Children[0].Sym
			expr = b.Children[3]

			var err error

			want, err = ParseTypeExpr(b.Children[2], child)
			if err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("malformed let binding %s", b)
		}

		exprType, err := Check(expr, child)
		if err != nil {
			return nil, err
		}

		if want != nil && !types.Eq(exprType, want) {
			return nil, fmt.Errorf("let %s: declared type %s does not match expression type %s", name, want, exprType)
		}

		if want == nil {
			want = exprType
		}

		child.DefineType(name, want)
	}

	body := n.Children[2:]

	var (
		last *types.Type = types.UnitT
		err  error
	)

	for _, f := range body {
		last, err = Check(f, child)
		if err != nil {
			return nil, err
		}
	}

	return last, nil
}

func checkIf(n *ast.Node, e *env.Env) (*types.Type, error) {
	if len(n.Children) != 4 {
		return nil, fmt.Errorf("if requires [if cond then else]")
	}

	if _, err := Check(n.Children[1], e); err != nil {
		return nil, err
	}

	thenT, err := Check(n.Children[2], e)
	if err != nil {
		return nil, err
	}

	elseT, err := Check(n.Children[3], e)
	if err != nil {
		return nil, err
	}

	if !types.Eq(thenT, elseT) {
		return nil, fmt.Errorf("if: then-type %s and else-type %s differ", thenT, elseT)
	}

	return thenT, nil
}

func checkDo(n *ast.Node, e *env.Env) (*types.Type, error) {
	last := types.UnitT

	for _, c := range n.Children[1:] {
		t, err := Check(c, e)
		if err != nil {
			return nil, err
		}

		last = t
	}

	return last, nil
}

func checkWhile(n *ast.Node, e *env.Env) (*types.Type, error) {
	if len(n.Children) < 2 {
		return nil, fmt.Errorf("while requires [while cond body...]")
	}

	condT, err := Check(n.Children[1], e)
	if err != nil {
		return nil, err
	}

	if !types.Eq(condT, types.BoolT) {
		return nil, fmt.Errorf("while: condition must be Bool, got %s", condT)
	}

	for _, b := range n.Children[2:] {
		if _, err := Check(b, e); err != nil {
			return nil, err
		}
	}

	return types.UnitT, nil
}

func checkSet(n *ast.Node, e *env.Env) (*types.Type, error) {
	if len(n.Children) != 3 {
		return nil, fmt.Errorf("set! requires [set! name expr]")
	}

	name := n.Children[1].Sym

	bound, ok := e.LookupType(name)
	if !ok {
		return nil, fmt.Errorf("set!: %q is not bound", name)
	}

	rhsT, err := Check(n.Children[2], e)
	if err != nil {
		return nil, err
	}

	if !types.Eq(bound, rhsT) {
		return nil, fmt.Errorf("set! %s: bound type %s does not match rhs type %s", name, bound, rhsT)
	}

	return types.UnitT, nil
}

func checkDefstruct(n *ast.Node, e *env.Env) (*types.Type, error) {
	if len(n.Children) != 3 {
		return nil, fmt.Errorf("defstruct requires [defstruct Name [fields...]]")
	}

	name := n.Children[1].Sym

	var (
		fieldNames []string
		fieldTypes []*types.Type
	)

	for _, f := range n.Children[2].Children {
		if len(f.Children) != 3 {
			return nil, fmt.Errorf("malformed defstruct field %s", f)
		}

		fieldNames = append(fieldNames, f.Children[0].Sym)

		ft, err := ParseTypeExpr(f.Children[2], e)
		if err != nil {
			return nil, err
		}

		fieldTypes = append(fieldTypes, ft)
	}

	e.DefineType(name, types.NewStruct(name, fieldNames, fieldTypes))

	return types.UnitT, nil
}

func checkDefenum(n *ast.Node, e *env.Env) (*types.Type, error) {
	if len(n.Children) != 3 {
		return nil, fmt.Errorf("defenum requires [defenum Name [variants...]]")
	}

	name := n.Children[1].Sym

	var variants []string

	for _, v := range n.Children[2].Children {
		variants = append(variants, v.Sym)
	}

	enumT := types.NewEnum(name, variants)
	e.DefineType(name, enumT)

	for _, v := range variants {
		e.DefineType(v, types.IntT)
	}

	return types.UnitT, nil
}

func checkCall(n *ast.Node, e *env.Env) (*types.Type, error) {
	headT, err := Check(n.Children[0], e)
	if err != nil {
		return nil, err
	}

	if headT.Kind != types.Func && headT.Kind != types.Any {
		return nil, fmt.Errorf("call head %q is not a function (%s)", n.Head(), headT)
	}

	args := n.Children[1:]

	if headT.Kind == types.Any {
		for _, a := range args {
			if _, err := Check(a, e); err != nil {
				return nil, err
			}
		}

		return types.AnyT, nil
	}

	if len(args) != len(headT.Params) {
		return nil, fmt.Errorf("call %q: arity %d does not match declared %d", n.Head(), len(args), len(headT.Params))
	}

	for i, a := range args {
		at, err := Check(a, e)
		if err != nil {
			return nil, err
		}

		if !types.Eq(at, headT.Params[i]) {
			return nil, fmt.Errorf("call %q: argument %d type %s does not match parameter type %s", n.Head(), i, at, headT.Params[i])
		}
	}

	return headT.Ret, nil
}

// ParseTypeExpr converts a type-expression form into a *types.Type:
// primitive symbols, `[Chan T]`, `[Vec T]`, `[Map K V]`, `[Option T]`,
// `[Result T E]`, and function type `[T1 T2 … -> R]`.
func ParseTypeExpr(n *ast.Node, e *env.Env) (*types.Type, error) {
	if n.Kind == ast.SYMBOL {
		switch n.Sym {
		case "Int":
			return types.IntT, nil
		case "Float":
			return types.FloatT, nil
		case "Bool":
			return types.BoolT, nil
		case "Str":
			return types.StrT, nil
		case "Unit":
			return types.UnitT, nil
		case "Any":
			return types.AnyT, nil
		default:
			t, ok := e.LookupType(n.Sym)
			if !ok {
				return nil, fmt.Errorf("unknown type %q", n.Sym)
			}

			return t, nil
		}
	}

	if n.Kind != ast.LIST || len(n.Children) == 0 {
		return nil, fmt.Errorf("malformed type expression %s", n)
	}

	if head := n.Children[0]; head.Kind == ast.SYMBOL {
		switch head.Sym {
		case "Chan":
			elem, err := ParseTypeExpr(n.Children[1], e)
			if err != nil {
				return nil, err
			}

			return types.NewChan(elem), nil
		case "Vec":
			elem, err := ParseTypeExpr(n.Children[1], e)
			if err != nil {
				return nil, err
			}

			return types.NewVec(elem), nil
		case "Map":
			key, err := ParseTypeExpr(n.Children[1], e)
			if err != nil {
				return nil, err
			}

			val, err := ParseTypeExpr(n.Children[2], e)
			if err != nil {
				return nil, err
			}

			return types.NewMap(key, val), nil
		case "Option":
			elem, err := ParseTypeExpr(n.Children[1], e)
			if err != nil {
				return nil, err
			}

			return types.NewOption(elem), nil
		case "Result":
			ok, err := ParseTypeExpr(n.Children[1], e)
			if err != nil {
				return nil, err
			}

			errT, err := ParseTypeExpr(n.Children[2], e)
			if err != nil {
				return nil, err
			}

			return types.NewResult(ok, errT), nil
		}
	}

	// Function type: `[T1 T2 … -> R]`.
	arrowIdx := -1

	for i, c := range n.Children {
		if c.IsSymbol("->") {
			arrowIdx = i
			break
		}
	}

	if arrowIdx < 0 {
		return nil, fmt.Errorf("malformed type expression %s", n)
	}

	var params []*types.Type

	for _, c := range n.Children[:arrowIdx] {
		pt, err := ParseTypeExpr(c, e)
		if err != nil {
			return nil, err
		}

		params = append(params, pt)
	}

	if arrowIdx+1 >= len(n.Children) {
		return nil, fmt.Errorf("function type missing return type: %s", n)
	}

	ret, err := ParseTypeExpr(n.Children[arrowIdx+1], e)
	if err != nil {
		return nil, err
	}

	return types.NewFunc(params, ret), nil
}
