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

package lexer

import "strconv"

// Node contains access to the start and end positions of a token or form.
type Node interface {
	Begin() Position
	End() Position
}

// A Position describes a resolved (line, column) pair within a file, as
// produced by the lexer while it consumes the rune stream. Lines are
// 1-based.
type Position struct {
	// File contains the path of the source file this position belongs to.
	// Empty for source read from an unnamed reader; the REPL uses "<repl>".
	File string
	Line int
	Col  int
}

// String returns the content in the "file:line:col" format.
func (p Position) String() string {
	return p.File + ":" + strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Col)
}

type defaultNode struct {
	begin, end Position
}

func (d defaultNode) Begin() Position {
	return d.begin
}

func (d defaultNode) End() Position {
	return d.end
}

// NewNode wraps a begin/end position pair as a Node, for constructing
// ad-hoc positional errors that are not tied to a real token or ast.Node.
func NewNode(begin, end Position) Node {
	return defaultNode{begin, end}
}
