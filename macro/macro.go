// Package macro implements SQALE's macro expander: type-aware bottom-up
// traversal, the built-in rewriters (when/unless/cond/->), and the
// environment user `defmacro` closures are registered into.
package macro

import (
	"fmt"

	"github.com/sqale-lang/sqale/ast"
)

// Rewriter is a host macro: given the raw list form, it returns a
// replacement form.
type Rewriter func(form *ast.Node) (*ast.Node, error)

// UserMacro is a collected `defmacro`, invoked on the AST-as-value
// translation of its arguments. Kept as a function so this package never
// needs to import eval/value and create a cycle; package vm supplies the
// closure-calling implementation when it collects defmacros.
type UserMacro func(args []*ast.Node) (*ast.Node, error)

type macroEntry struct {
	name   string
	host   Rewriter
	user   UserMacro
	isUser bool
}

// Env is the macro environment: a linked list of named entries, each
// either a host rewriter or a user-defined compile-time macro.
type Env struct {
	entries []macroEntry
	parent  *Env
}

// NewEnv creates a macro environment preloaded with the built-in
// rewriters: when, unless, cond, and ->.
func NewEnv() *Env {
	e := &Env{}
	e.AddHost("when", rewriteWhen)
	e.AddHost("unless", rewriteUnless)
	e.AddHost("cond", rewriteCond)
	e.AddHost("->", rewriteThread)

	return e
}

// Child creates a nested macro environment whose lookups fall back to e.
func (e *Env) Child() *Env { return &Env{parent: e} }

func (e *Env) AddHost(name string, fn Rewriter) {
	e.entries = append(e.entries, macroEntry{name: name, host: fn})
}

// AddUser registers a collected `defmacro` closure under name.
func (e *Env) AddUser(name string, fn UserMacro) {
	e.entries = append(e.entries, macroEntry{name: name, user: fn, isUser: true})
}

func (e *Env) lookup(name string) (macroEntry, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		for i := len(cur.entries) - 1; i >= 0; i-- {
			if cur.entries[i].name == name {
				return cur.entries[i], true
			}
		}
	}

	return macroEntry{}, false
}

// maxExpansions bounds the fixed-point re-expansion loop so a macro that
// keeps rewriting itself cannot spin forever.
const maxExpansions = 1000

// Expand runs the expander to a fixed point: re-expansion of the result
// is a no-op.
func Expand(n *ast.Node, env *Env) (*ast.Node, error) {
	cur := n

	for i := 0; i < maxExpansions; i++ {
		next, changed, err := expandOnce(cur, env, false)
		if err != nil {
			return nil, err
		}

		if !changed {
			return next, nil
		}

		cur = next
	}

	return nil, fmt.Errorf("macro expansion did not reach a fixed point after %d passes", maxExpansions)
}

// listLooksLikeType reports whether lst should be skipped by expansion
// because it is a type expression: a Chan head, or an `->` in any
// non-head position. An `->` in head position is the threading macro, not
// a function type, so the head is excluded from the scan.
func listLooksLikeType(lst *ast.Node) bool {
	if lst.Head() == "Chan" {
		return true
	}

	for _, c := range lst.Children[1:] {
		if c.IsSymbol("->") {
			return true
		}
	}

	return false
}

func expandOnce(n *ast.Node, env *Env, insideType bool) (*ast.Node, bool, error) {
	if n == nil {
		return nil, false, nil
	}

	if insideType || n.Kind != ast.LIST {
		return n, false, nil
	}

	return expandList(n, env)
}

func expandList(lst *ast.Node, env *Env) (*ast.Node, bool, error) {
	if len(lst.Children) == 0 {
		return lst, false, nil
	}

	if listLooksLikeType(lst) {
		return lst, false, nil
	}

	if me, ok := env.lookup(lst.Head()); ok {
		var (
			out *ast.Node
			err error
		)

		if me.isUser {
			out, err = me.user(lst.Children[1:])
		} else {
			out, err = me.host(lst)
		}

		if err != nil {
			return nil, false, err
		}

		expanded, _, err := expandOnce(out, env, false)
		if err != nil {
			return nil, false, err
		}

		return expanded, true, nil
	}

	// Expand children; track whether we've crossed a ':' marker so the
	// type expression following it is left alone.
	out := ast.NewList(lst.Pos, lst.EndPos)

	changed := false
	afterColon := false

	for _, c := range lst.Children {
		child, childChanged, err := expandOnce(c, env, afterColon)
		if err != nil {
			return nil, false, err
		}

		if childChanged {
			changed = true
		}

		out.AddChildren(child)

		if c.IsSymbol(":") {
			afterColon = true
		} else {
			afterColon = false
		}
	}

	return out, changed, nil
}

// rewriteWhen implements `[when test body…]` → `[if test [do body…] [do]]`.
func rewriteWhen(form *ast.Node) (*ast.Node, error) {
	if len(form.Children) < 2 {
		return nil, fmt.Errorf("when requires at least a test expression")
	}

	test := form.Children[1]
	body := form.Children[2:]

	out := ast.NewList(form.Pos, form.EndPos)
	out.AddChildren(
		ast.NewSymbol("if", form.Pos, form.Pos),
		test,
		wrapDo(body, form),
		wrapDo(nil, form),
	)

	return out, nil
}

// rewriteUnless implements the supplemented dual of when: `[unless test
// body…]` → `[if test [do] [do body…]]`.
func rewriteUnless(form *ast.Node) (*ast.Node, error) {
	if len(form.Children) < 2 {
		return nil, fmt.Errorf("unless requires at least a test expression")
	}

	test := form.Children[1]
	body := form.Children[2:]

	out := ast.NewList(form.Pos, form.EndPos)
	out.AddChildren(
		ast.NewSymbol("if", form.Pos, form.Pos),
		test,
		wrapDo(nil, form),
		wrapDo(body, form),
	)

	return out, nil
}

func wrapDo(body []*ast.Node, at *ast.Node) *ast.Node {
	out := ast.NewList(at.Pos, at.EndPos)
	out.AddChildren(ast.NewSymbol("do", at.Pos, at.Pos))
	out.AddChildren(body...)

	return out
}

// rewriteCond implements `[cond [t a…] [t2 b…] … [else e…]]` → a
// right-folded chain of nested ifs, innermost default `[do]`.
func rewriteCond(form *ast.Node) (*ast.Node, error) {
	clauses := form.Children[1:]

	acc := wrapDo(nil, form)

	for i := len(clauses) - 1; i >= 0; i-- {
		cl := clauses[i]
		if !cl.IsList() || len(cl.Children) == 0 {
			continue
		}

		test := cl.Children[0]
		body := wrapDo(cl.Children[1:], form)

		if test.IsSymbol("else") {
			acc = body
			continue
		}

		iff := ast.NewList(form.Pos, form.EndPos)
		iff.AddChildren(ast.NewSymbol("if", form.Pos, form.Pos), test, body, acc)
		acc = iff
	}

	return acc, nil
}

// rewriteThread implements `[-> x s1 s2 …]`: at each step, a symbol si
// becomes `[si acc]`; a list `[head arg…]` becomes `[head acc arg…]`.
func rewriteThread(form *ast.Node) (*ast.Node, error) {
	if len(form.Children) < 2 {
		return nil, fmt.Errorf("-> requires an initial expression")
	}

	acc := form.Children[1]

	for _, step := range form.Children[2:] {
		switch {
		case step.Kind == ast.SYMBOL:
			call := ast.NewList(step.Pos, step.EndPos)
			call.AddChildren(step, acc)
			acc = call
		case step.IsList() && len(step.Children) >= 1:
			call := ast.NewList(step.Pos, step.EndPos)
			call.AddChildren(step.Children[0], acc)
			call.AddChildren(step.Children[1:]...)
			acc = call
		default:
			return nil, fmt.Errorf("-> : malformed step %s", step)
		}
	}

	return acc, nil
}
