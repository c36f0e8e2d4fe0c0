package vm

import (
	"fmt"

	"github.com/sqale-lang/sqale/ast"
	"github.com/sqale-lang/sqale/check"
	"github.com/sqale-lang/sqale/eval"
	"github.com/sqale-lang/sqale/lexer"
	"github.com/sqale-lang/sqale/macro"
	"github.com/sqale-lang/sqale/value"
)

// CollectDefmacros scans top's top-level forms for `[defmacro name
// [params…] body…]`, rewrites each into a declared-Any-params,
// Any-return `fn` form, type-checks and evaluates it in v's dedicated
// macro-time VM, and registers the resulting closure in macros under
// name, all before macro.Expand ever runs, so user macros are already
// collected when expansion starts.
func (v *VM) CollectDefmacros(top *ast.Node, macros *macro.Env) error {
	for _, form := range top.Children {
		if !form.IsList() || form.Head() != "defmacro" {
			continue
		}

		if err := v.collectOneDefmacro(form, macros); err != nil {
			return err
		}
	}

	return nil
}

func (v *VM) collectOneDefmacro(form *ast.Node, macros *macro.Env) error {
	if len(form.Children) < 4 {
		return fmt.Errorf("defmacro requires [defmacro name [params...] body...]")
	}

	name := form.Children[1].Sym
	params := form.Children[2]
	body := form.Children[3:]

	if v.macroVM == nil {
		v.macroVM = newMacroVM()
	}

	mv := v.macroVM

	fnNode := buildMacroFn(params, body)

	if _, err := check.Check(fnNode, mv.Global); err != nil {
		return fmt.Errorf("defmacro %s: %w", name, err)
	}

	closureVal := eval.Eval(fnNode, mv.Global, mv.GC)
	if closureVal.Kind != value.Closure {
		return fmt.Errorf("defmacro %s: body did not evaluate to a function", name)
	}

	macros.AddUser(name, func(args []*ast.Node) (*ast.Node, error) {
		argVals := make([]value.Value, len(args))
		for i, a := range args {
			argVals[i] = astToValue(a, mv.GC)
		}

		result := eval.Apply(closureVal, argVals, mv.Global, mv.GC)

		pos := form.Pos
		if len(args) > 0 {
			pos = args[0].Pos
		}

		return valueToAst(result, pos), nil
	})

	return nil
}

// buildMacroFn rewrites a raw `[params…]` list and body into
// `[fn [[p : Any] …] : Any body…]`, the declared-Any shape every user
// macro compiles to.
func buildMacroFn(params *ast.Node, body []*ast.Node) *ast.Node {
	pos := params.Pos

	typedParams := ast.NewList(pos, pos)

	for _, p := range params.Children {
		tp := ast.NewList(p.Pos, p.EndPos)
		tp.AddChildren(p, colonAt(pos), anyAt(pos))
		typedParams.AddChildren(tp)
	}

	fnNode := ast.NewList(pos, pos)
	fnNode.AddChildren(ast.NewSymbol("fn", pos, pos), typedParams, colonAt(pos), anyAt(pos))
	fnNode.AddChildren(body...)

	return fnNode
}

func anyAt(pos lexer.Position) *ast.Node   { return ast.NewSymbol("Any", pos, pos) }
func colonAt(pos lexer.Position) *ast.Node { return ast.NewSymbol(":", pos, pos) }
