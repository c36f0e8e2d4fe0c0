package vet

import (
	"fmt"

	"github.com/sqale-lang/sqale/ast"
)

// walk invokes visit for every node in the tree rooted at n, depth-first,
// parent before children.
func walk(n *ast.Node, visit func(*ast.Node)) {
	if n == nil {
		return
	}

	visit(n)

	for _, c := range n.Children {
		walk(c, visit)
	}
}

func issueAt(file string, n *ast.Node, sev Severity, category, check, msg string) *Issue {
	return &Issue{
		File:     file,
		Line:     n.Pos.Line,
		Column:   n.Pos.Col,
		Severity: sev,
		Category: category,
		Check:    check,
		Message:  msg,
	}
}

// DivByZeroCheck flags `[/ x 0]`/`[% x 0]` with a literal zero divisor.
// Division by zero always evaluates to Unit at runtime, so a literal zero
// is almost always a typo for a variable and worth calling out before the
// program runs.
type DivByZeroCheck struct{}

func (c *DivByZeroCheck) Name() string     { return "div-by-zero-literal" }
func (c *DivByZeroCheck) Category() string { return "arithmetic" }

func (c *DivByZeroCheck) Analyze(file string, top *ast.Node) []*Issue {
	var issues []*Issue

	walk(top, func(n *ast.Node) {
		if !n.IsList() || len(n.Children) != 3 {
			return
		}

		op := n.Head()
		if op != "/" && op != "%" {
			return
		}

		divisor := n.Children[2]
		if divisor.Kind == ast.INT && divisor.Int == 0 {
			issues = append(issues, issueAt(file, n, SeverityError, c.Category(), c.Name(),
				fmt.Sprintf("%s by literal zero always evaluates to Unit", op)))
		}
	})

	return issues
}

// ShadowCheck flags a `let` binding or `fn` parameter that reuses a name
// already bound by an enclosing `let`/`fn`/`def`.
type ShadowCheck struct{}

func (c *ShadowCheck) Name() string     { return "shadowed-binding" }
func (c *ShadowCheck) Category() string { return "bindings" }

func (c *ShadowCheck) Analyze(file string, top *ast.Node) []*Issue {
	var issues []*Issue

	var visit func(n *ast.Node, bound map[string]bool)
	visit = func(n *ast.Node, bound map[string]bool) {
		if !n.IsList() {
			return
		}

		switch n.Head() {
		case "let":
			child := copyBound(bound)

			if len(n.Children) >= 2 {
				for _, b := range n.Children[1].Children {
					if len(b.Children) == 0 {
						continue
					}

					name := b.Children[0].Sym

					if child[name] {
						issues = append(issues, issueAt(file, b, SeverityWarning, c.Category(), c.Name(),
							fmt.Sprintf("let binding %q shadows an outer binding", name)))
					}

					child[name] = true
				}
			}

			if len(n.Children) > 2 {
				for _, b := range n.Children[2:] {
					visit(b, child)
				}
			}

			return
		case "fn":
			child := copyBound(bound)

			if len(n.Children) >= 2 {
				for _, p := range n.Children[1].Children {
					if len(p.Children) == 0 {
						continue
					}

					name := p.Children[0].Sym

					if child[name] {
						issues = append(issues, issueAt(file, p, SeverityWarning, c.Category(), c.Name(),
							fmt.Sprintf("fn parameter %q shadows an outer binding", name)))
					}

					child[name] = true
				}
			}

			if len(n.Children) > 4 {
				for _, b := range n.Children[4:] {
					visit(b, child)
				}
			}

			return
		case "def":
			if len(n.Children) >= 2 {
				bound[n.Children[1].Sym] = true
			}
		}

		for _, ch := range n.Children {
			visit(ch, bound)
		}
	}

	visit(top, map[string]bool{})

	return issues
}

func copyBound(bound map[string]bool) map[string]bool {
	out := make(map[string]bool, len(bound)+2)
	for k, v := range bound {
		out[k] = v
	}

	return out
}

// SpawnNoChannelCheck flags a `spawn` whose closure body never calls
// send/recv/try-recv: almost certainly a fire-and-forget thread the
// programmer meant to communicate through a channel but forgot to.
// Channels are spawn's only coordination primitive; a thread without one
// is unobservable and, with no cancellation in the language, can never be
// waited on either.
type SpawnNoChannelCheck struct{}

func (c *SpawnNoChannelCheck) Name() string     { return "spawn-no-channel" }
func (c *SpawnNoChannelCheck) Category() string { return "concurrency" }

func (c *SpawnNoChannelCheck) Analyze(file string, top *ast.Node) []*Issue {
	var issues []*Issue

	walk(top, func(n *ast.Node) {
		if !n.IsList() || n.Head() != "spawn" || len(n.Children) != 2 {
			return
		}

		body := n.Children[1]
		if !usesChannelOp(body) {
			issues = append(issues, issueAt(file, n, SeverityInfo, c.Category(), c.Name(),
				"spawned closure never calls send/recv/try-recv"))
		}
	})

	return issues
}

func usesChannelOp(n *ast.Node) bool {
	found := false

	walk(n, func(c *ast.Node) {
		switch c.Head() {
		case "send", "recv", "try-recv":
			found = true
		}
	})

	return found
}
