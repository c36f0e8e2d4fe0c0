package vm

import (
	"github.com/sqale-lang/sqale/ast"
	"github.com/sqale-lang/sqale/gc"
	"github.com/sqale-lang/sqale/lexer"
	"github.com/sqale-lang/sqale/value"
)

// astToValue converts a parsed form to its AST-as-value analogue
// (INT→Int, SYMBOL→Symbol, LIST→List, recursively). Used to hand a user
// macro's raw argument forms to its compiled closure.
func astToValue(n *ast.Node, c *gc.Collector) value.Value {
	if n == nil {
		return value.NewUnit()
	}

	switch n.Kind {
	case ast.INT:
		return value.NewInt(n.Int)
	case ast.FLOAT:
		return value.NewFloat(n.Float)
	case ast.BOOL:
		return value.NewBool(n.Bool)
	case ast.STRING:
		return value.NewStr(c, n.Str)
	case ast.SYMBOL:
		return value.NewSymbol(n.Sym)
	case ast.LIST:
		items := make([]value.Value, len(n.Children))
		for i, ch := range n.Children {
			items[i] = astToValue(ch, c)
		}

		return value.NewList(c, items)
	default:
		return value.NewUnit()
	}
}

// valueToAst converts a macro's returned value back into a form tree at
// pos. A value.Unit or any non-form-shaped kind becomes an empty `do`,
// the same no-op SQALE already uses for an absent else-branch.
func valueToAst(v value.Value, pos lexer.Position) *ast.Node {
	switch v.Kind {
	case value.Int:
		return ast.NewInt(v.I, pos, pos)
	case value.Float:
		return ast.NewFloat(v.F, pos, pos)
	case value.Bool:
		return ast.NewBool(v.B, pos, pos)
	case value.Str:
		return ast.NewString(v.Str.Data, pos, pos)
	case value.Symbol:
		return ast.NewSymbol(v.Sym, pos, pos)
	case value.List:
		out := ast.NewList(pos, pos)

		for _, item := range v.ListV.Items {
			out.AddChildren(valueToAst(item, pos))
		}

		return out
	default:
		out := ast.NewList(pos, pos)
		out.AddChildren(ast.NewSymbol("do", pos, pos))

		return out
	}
}
