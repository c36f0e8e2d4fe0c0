package check

import (
	"errors"
	"testing"

	"github.com/sqale-lang/sqale/env"
	"github.com/sqale-lang/sqale/lexer"
	"github.com/sqale-lang/sqale/parser"
	"github.com/sqale-lang/sqale/types"
)

func mustParse(t *testing.T, src string) *parser.Parser {
	t.Helper()
	return parser.New("test.sq", src)
}

func TestCheckDefAndFactorial(t *testing.T) {
	src := `[def fact : [Int -> Int] [fn [[n : Int]] : Int [if [= n 0] 1 [* n [fact [- n 1]]]]]]`

	top, err := mustParse(t, src).ParseTopLevel()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	e := env.New(nil)
	e.DefineType("=", types.NewFunc([]*types.Type{types.IntT, types.IntT}, types.BoolT))
	e.DefineType("-", types.NewFunc([]*types.Type{types.IntT, types.IntT}, types.IntT))
	e.DefineType("*", types.NewFunc([]*types.Type{types.IntT, types.IntT}, types.IntT))

	if err := CheckProgram(top, e); err != nil {
		t.Fatalf("unexpected check error: %v", err)
	}
}

func TestCheckAnnotatesEveryExpressionNode(t *testing.T) {
	src := `[def add : [Int Int -> Int] [fn [[a : Int] [b : Int]] : Int [+ a b]]] [add 1 2]`

	top, err := mustParse(t, src).ParseTopLevel()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	e := env.New(nil)
	e.DefineType("+", types.NewFunc([]*types.Type{types.IntT, types.IntT}, types.IntT))

	if err := CheckProgram(top, e); err != nil {
		t.Fatalf("unexpected check error: %v", err)
	}

	// Expression positions all carry a non-Error type; the `[add 1 2]`
	// call and its arguments are the ones worth pinning down.
	call := top.Children[1]
	if call.Type == nil || call.Type.Kind != types.Int {
		t.Fatalf("call node type = %v, want Int", call.Type)
	}

	for _, arg := range call.Children {
		if arg.Type == nil || arg.Type.Kind == types.Error {
			t.Fatalf("node %s left unannotated after a successful check", arg)
		}
	}
}

func TestCheckIfBranchMismatchFails(t *testing.T) {
	top, err := mustParse(t, `[if true 1 "x"]`).ParseTopLevel()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	e := env.New(nil)
	if err := CheckProgram(top, e); err == nil {
		t.Fatal("expected a type error for mismatched if branches")
	}
}

func TestCheckUnboundNameFails(t *testing.T) {
	top, err := mustParse(t, `[print x]`).ParseTopLevel()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	e := env.New(nil)
	e.DefineType("print", types.NewFunc([]*types.Type{types.AnyT}, types.UnitT))

	if err := CheckProgram(top, e); err == nil {
		t.Fatal("expected an unbound-name error")
	}
}

func TestCheckLetInfersTypeFromExpr(t *testing.T) {
	top, err := mustParse(t, `[let [[x 1]] x]`).ParseTopLevel()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	e := env.New(nil)
	if err := CheckProgram(top, e); err != nil {
		t.Fatalf("unexpected check error: %v", err)
	}

	if top.Children[0].Type.Kind != types.Int {
		t.Fatalf("expected let to have type Int, got %s", top.Children[0].Type)
	}
}

func TestCheckErrorUnwrapsToPositionalError(t *testing.T) {
	top, err := mustParse(t, `[def x : Int "nope"]`).ParseTopLevel()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	checkErr := CheckProgram(top, env.New(nil))
	if checkErr == nil {
		t.Fatal("expected a type error")
	}

	var posErr *lexer.PosError
	if !errors.As(checkErr, &posErr) {
		t.Fatalf("expected the error chain to carry a PosError, got %T", checkErr)
	}

	if posErr.Details[0].Node.Begin().Line != 1 {
		t.Fatalf("expected the failing form's position, got %+v", posErr.Details[0].Node.Begin())
	}
}

func TestCheckAnyAcceptsAnything(t *testing.T) {
	top, err := mustParse(t, `[f 1 "x" true]`).ParseTopLevel()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	e := env.New(nil)
	e.DefineType("f", types.AnyT)

	if err := CheckProgram(top, e); err != nil {
		t.Fatalf("unexpected check error calling an Any-typed head: %v", err)
	}
}
