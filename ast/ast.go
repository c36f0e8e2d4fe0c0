// Copyright 2021 Torben Schinke
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ast holds the uniform bracketed form tree that the
// lexer/parser produce and every later stage (macro expander, type
// checker, evaluator) walks and rewrites.
package ast

import (
	"strconv"
	"strings"

	"github.com/sqale-lang/sqale/lexer"
	"github.com/sqale-lang/sqale/types"
)

// Kind tags a Node with which of the six form shapes it is.
type Kind int

const (
	LIST Kind = iota
	SYMBOL
	INT
	FLOAT
	STRING
	BOOL
)

func (k Kind) String() string {
	switch k {
	case LIST:
		return "LIST"
	case SYMBOL:
		return "SYMBOL"
	case INT:
		return "INT"
	case FLOAT:
		return "FLOAT"
	case STRING:
		return "STRING"
	case BOOL:
		return "BOOL"
	default:
		return "?"
	}
}

// Node is a single form: a list, a symbol, or a literal. Only the fields
// relevant to Kind are populated; the rest are zero. Type is nil until
// the checker (package check) annotates this node; after a successful
// check every expression node's Type is non-nil and not types.Error.
type Node struct {
	Kind Kind

	Pos    lexer.Position
	EndPos lexer.Position

	// LIST
	Children []*Node

	// SYMBOL
	Sym string

	// INT
	Int int64

	// FLOAT
	Float float64

	// STRING: raw, un-escaped text as it appeared between the quotes.
	Str string

	// BOOL
	Bool bool

	// Type is filled in by the checker; nil for untyped/unchecked nodes.
	Type *types.Type
}

func (n *Node) Begin() lexer.Position { return n.Pos }
func (n *Node) End() lexer.Position   { return n.EndPos }

// NewList creates an empty LIST node ready to have children appended.
func NewList(begin, end lexer.Position) *Node {
	return &Node{Kind: LIST, Pos: begin, EndPos: end}
}

// AddChildren appends children to a LIST node and returns it, builder-style.
func (n *Node) AddChildren(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

func NewSymbol(sym string, begin, end lexer.Position) *Node {
	return &Node{Kind: SYMBOL, Sym: sym, Pos: begin, EndPos: end}
}

func NewInt(v int64, begin, end lexer.Position) *Node {
	return &Node{Kind: INT, Int: v, Pos: begin, EndPos: end}
}

func NewFloat(v float64, begin, end lexer.Position) *Node {
	return &Node{Kind: FLOAT, Float: v, Pos: begin, EndPos: end}
}

func NewString(v string, begin, end lexer.Position) *Node {
	return &Node{Kind: STRING, Str: v, Pos: begin, EndPos: end}
}

func NewBool(v bool, begin, end lexer.Position) *Node {
	return &Node{Kind: BOOL, Bool: v, Pos: begin, EndPos: end}
}

// IsList reports whether n is a LIST form, the substrate of all syntax.
func (n *Node) IsList() bool { return n != nil && n.Kind == LIST }

// IsSymbol reports whether n is a SYMBOL equal to sym.
func (n *Node) IsSymbol(sym string) bool {
	return n != nil && n.Kind == SYMBOL && n.Sym == sym
}

// Head returns the symbol name of a list's first child, or "" if n is
// not a non-empty list headed by a symbol. Used throughout the macro
// expander, checker, and evaluator to dispatch on the recognized head
// symbols.
func (n *Node) Head() string {
	if !n.IsList() || len(n.Children) == 0 {
		return ""
	}

	if h := n.Children[0]; h.Kind == SYMBOL {
		return h.Sym
	}

	return ""
}

// Clone deep-copies a node. The macro expander and quasiquote builder use
// this so that rewriting one occurrence of a sub-form never aliases
// another.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}

	c := *n

	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = ch.Clone()
		}
	}

	return &c
}

// String renders n back to canonical SQALE source text. Parsing
// String(n) reproduces a tree structurally equal to n modulo positions.
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb)

	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	if n == nil {
		return
	}

	switch n.Kind {
	case LIST:
		sb.WriteByte('[')

		for i, c := range n.Children {
			if i > 0 {
				sb.WriteByte(' ')
			}

			c.write(sb)
		}

		sb.WriteByte(']')
	case SYMBOL:
		sb.WriteString(n.Sym)
	case INT:
		sb.WriteString(strconv.FormatInt(n.Int, 10))
	case FLOAT:
		// 'f' never uses an exponent, which the lexer does not accept, and
		// a trailing ".0" keeps integral floats from reparsing as INT.
		s := strconv.FormatFloat(n.Float, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}

		sb.WriteString(s)
	case STRING:
		sb.WriteByte('"')
		sb.WriteString(n.Str)
		sb.WriteByte('"')
	case BOOL:
		if n.Bool {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	}
}

// Equal reports whether two nodes are structurally equal, ignoring
// positions and Type annotations.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}

	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case LIST:
		if len(a.Children) != len(b.Children) {
			return false
		}

		for i := range a.Children {
			if !Equal(a.Children[i], b.Children[i]) {
				return false
			}
		}

		return true
	case SYMBOL:
		return a.Sym == b.Sym
	case INT:
		return a.Int == b.Int
	case FLOAT:
		return a.Float == b.Float
	case STRING:
		return a.Str == b.Str
	case BOOL:
		return a.Bool == b.Bool
	default:
		return false
	}
}
