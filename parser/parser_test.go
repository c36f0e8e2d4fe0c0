package parser

import (
	"testing"

	"github.com/sqale-lang/sqale/ast"
	"github.com/sqale-lang/sqale/lexer"
)

func TestParseLiterals(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want *ast.Node
	}{
		{"int", "[42]", ast.NewList(lp(), lp()).AddChildren(ast.NewInt(42, lp(), lp()))},
		{"float", "[4.2]", ast.NewList(lp(), lp()).AddChildren(ast.NewFloat(4.2, lp(), lp()))},
		{"neg int", "[-7]", ast.NewList(lp(), lp()).AddChildren(ast.NewInt(-7, lp(), lp()))},
		{"string", `["hi"]`, ast.NewList(lp(), lp()).AddChildren(ast.NewString("hi", lp(), lp()))},
		{"bool true", "[true]", ast.NewList(lp(), lp()).AddChildren(ast.NewBool(true, lp(), lp()))},
		{"bool false", "[false]", ast.NewList(lp(), lp()).AddChildren(ast.NewBool(false, lp(), lp()))},
		{"symbol", "[+]", ast.NewList(lp(), lp()).AddChildren(ast.NewSymbol("+", lp(), lp()))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			top, err := New("test.sq", tt.src).ParseTopLevel()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(top.Children) != 1 {
				t.Fatalf("expected one top-level form, got %d", len(top.Children))
			}

			if !ast.Equal(top.Children[0], tt.want) {
				t.Fatalf("got %s, want %s", top.Children[0], tt.want)
			}
		})
	}
}

func TestParseNestedList(t *testing.T) {
	top, err := New("test.sq", "[def x : Int [+ 1 2]]").ParseTopLevel()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(top.Children) != 1 {
		t.Fatalf("expected one top-level form, got %d", len(top.Children))
	}

	form := top.Children[0]
	if form.Head() != "def" {
		t.Fatalf("expected head 'def', got %q", form.Head())
	}

	if len(form.Children) != 5 {
		t.Fatalf("expected 5 children, got %d: %s", len(form.Children), form)
	}

	if form.Children[2].Sym != ":" {
		t.Fatalf("expected ':' marker, got %s", form.Children[2])
	}

	inner := form.Children[4]
	if inner.Head() != "+" {
		t.Fatalf("expected nested '+' call, got %s", inner)
	}
}

func TestUnterminatedListIsTolerated(t *testing.T) {
	top, err := New("test.sq", "[def x [+ 1 2]").ParseTopLevel()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(top.Children) != 1 {
		t.Fatalf("expected one top-level form despite missing ']', got %d", len(top.Children))
	}
}

func TestUnterminatedStringIsTolerated(t *testing.T) {
	top, err := New("test.sq", `["hello`).ParseTopLevel()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(top.Children) != 1 || top.Children[0].Children[0].Str != "hello" {
		t.Fatalf("expected tolerant string parse, got %s", top)
	}
}

func TestParsePrintRoundTrip(t *testing.T) {
	src := `[def fact : [Int -> Int] [fn [[n : Int]] : Int [if [= n 0] 1 [* n [fact [- n 1]]]]]]`

	top, err := New("test.sq", src).ParseTopLevel()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	printed := top.Children[0].String()

	top2, err := New("test.sq", printed).ParseTopLevel()
	if err != nil {
		t.Fatalf("unexpected error on reparse: %v", err)
	}

	if !ast.Equal(top.Children[0], top2.Children[0]) {
		t.Fatalf("round-trip mismatch:\n%s\nvs\n%s", top.Children[0], top2.Children[0])
	}
}

// lp returns a zero Position; these tests only compare structure via
// ast.Equal, which ignores positions.
func lp() lexer.Position {
	return lexer.Position{}
}
