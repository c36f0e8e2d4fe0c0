// Package eval implements SQALE's tree-walking evaluator: dispatch on
// the recognized special-form heads, native and closure calls, and
// quote/quasiquote form-to-value conversion.
package eval

import (
	"fmt"
	"os"

	"github.com/xrash/smetrics"

	"github.com/sqale-lang/sqale/ast"
	"github.com/sqale-lang/sqale/env"
	"github.com/sqale-lang/sqale/gc"
	"github.com/sqale-lang/sqale/types"
	"github.com/sqale-lang/sqale/value"
)

// Host is the slice of VM behavior the evaluator needs but must not
// import directly (package vm imports eval, not the reverse): resolving
// and running an `import` form. A *vm.VM is installed as the Host on the
// global Env's Aux field; every child frame inherits it (see env.New).
type Host interface {
	Import(spec string) error
}

// hostOf extracts the Host from whichever frame in e's chain set Aux.
func hostOf(e *env.Env) Host {
	if h, ok := e.Aux.(Host); ok {
		return h
	}

	return nil
}

// RunProgram evaluates every top-level form in order, used both for the
// top-level user program and for each imported module.
func RunProgram(top *ast.Node, e *env.Env, c *gc.Collector) {
	for _, form := range top.Children {
		Eval(form, e, c)
	}
}

// Eval evaluates one already type-checked form.
func Eval(n *ast.Node, e *env.Env, c *gc.Collector) value.Value {
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
		b, ok := e.Lookup(n.Sym)
		if !ok {
			// Name-resolution failures at runtime are non-fatal: log and
			// return Unit.
			if hint := suggest(n.Sym, e.Names()); hint != "" {
				fmt.Fprintf(os.Stderr, "sqale: unbound name %q (did you mean %q?)\n", n.Sym, hint)
			} else {
				fmt.Fprintf(os.Stderr, "sqale: unbound name %q\n", n.Sym)
			}

			return value.NewUnit()
		}

		return b.V
	case ast.LIST:
		return evalList(n, e, c)
	default:
		return value.NewUnit()
	}
}

func evalList(n *ast.Node, e *env.Env, c *gc.Collector) value.Value {
	if len(n.Children) == 0 {
		return value.NewUnit()
	}

	switch n.Head() {
	case "def":
		return evalDef(n, e, c)
	case "fn":
		return evalFn(n, e, c)
	case "let":
		return evalLet(n, e, c)
	case "if":
		return evalIf(n, e, c)
	case "do":
		return evalDo(n, e, c)
	case "while":
		return evalWhile(n, e, c)
	case "set!":
		return evalSet(n, e, c)
	case "quote":
		if len(n.Children) < 2 {
			return value.NewUnit()
		}

		return quoteForm(n.Children[1], c)
	case "quasiquote":
		if len(n.Children) < 2 {
			return value.NewUnit()
		}

		return quasiquote(n.Children[1], e, c)
	case "defstruct":
		return value.NewUnit() // bound by the checker; no runtime value.
	case "defenum":
		return evalDefenum(n, e)
	case "defmacro":
		return value.NewUnit() // collected before expansion; no-op here.
	case "import":
		return evalImport(n, e)
	default:
		return evalCall(n, e, c)
	}
}

// evalDef handles `[def name : Type expr]`; expr sits after the ':' and
// type children the parser keeps in place.
func evalDef(n *ast.Node, e *env.Env, c *gc.Collector) value.Value {
	v := Eval(n.Children[4], e, c)
	e.Define(n.Children[1].Sym, n.Children[4].Type, v)

	return value.NewUnit()
}

func evalFn(n *ast.Node, e *env.Env, c *gc.Collector) value.Value {
	return value.NewClosure(c, n, e, n.Type)
}

func evalLet(n *ast.Node, e *env.Env, c *gc.Collector) value.Value {
	child := env.New(e)

	for _, b := range n.Children[1].Children {
		var (
			name string
			expr *ast.Node
		)

		switch len(b.Children) {
		case 2:
			name, expr = b.Children[0].Sym, b.Children[1]
		case 4:
			// [name : T expr]
			name, expr = b.Children[0].Sym, b.Children[3]
		}

		v := Eval(expr, child, c)
		child.Define(name, expr.Type, v)
	}

	var result value.Value = value.NewUnit()

	for _, f := range n.Children[2:] {
		result = Eval(f, child, c)
	}

	return result
}

func evalIf(n *ast.Node, e *env.Env, c *gc.Collector) value.Value {
	cond := Eval(n.Children[1], e, c)
	if value.Truthy(cond) {
		return Eval(n.Children[2], e, c)
	}

	return Eval(n.Children[3], e, c)
}

func evalDo(n *ast.Node, e *env.Env, c *gc.Collector) value.Value {
	var result value.Value = value.NewUnit()

	for _, f := range n.Children[1:] {
		result = Eval(f, e, c)
	}

	return result
}

func evalWhile(n *ast.Node, e *env.Env, c *gc.Collector) value.Value {
	for value.Truthy(Eval(n.Children[1], e, c)) {
		for _, b := range n.Children[2:] {
			Eval(b, e, c)
		}
	}

	return value.NewUnit()
}

func evalSet(n *ast.Node, e *env.Env, c *gc.Collector) value.Value {
	v := Eval(n.Children[2], e, c)
	e.Set(n.Children[1].Sym, v)

	return value.NewUnit()
}

func evalDefenum(n *ast.Node, e *env.Env) value.Value {
	for i, variant := range n.Children[2].Children {
		e.Define(variant.Sym, types.IntT, value.NewInt(int64(i)))
	}

	return value.NewUnit()
}

func evalImport(n *ast.Node, e *env.Env) value.Value {
	if len(n.Children) < 2 || n.Children[1].Kind != ast.STRING {
		fmt.Fprintln(os.Stderr, "sqale: import requires a string path argument")
		return value.NewUnit()
	}

	spec := n.Children[1].Str

	h := hostOf(e)
	if h == nil {
		fmt.Fprintf(os.Stderr, "sqale: import %q: no module host configured\n", spec)
		return value.NewUnit()
	}

	if err := h.Import(spec); err != nil {
		// A missing module is an error to stderr; evaluation continues
		// with subsequent forms.
		fmt.Fprintf(os.Stderr, "sqale: import %q: %v\n", spec, err)
	}

	return value.NewUnit()
}

func evalCall(n *ast.Node, e *env.Env, c *gc.Collector) value.Value {
	head := Eval(n.Children[0], e, c)

	args := make([]value.Value, 0, len(n.Children)-1)
	for _, a := range n.Children[1:] {
		args = append(args, Eval(a, e, c))
	}

	return Apply(head, args, e, c)
}

// Apply calls a Func or Closure value with already-evaluated args. Any
// other kind in call position returns Unit.
func Apply(head value.Value, args []value.Value, e *env.Env, c *gc.Collector) value.Value {
	switch head.Kind {
	case value.Func:
		return head.Native.Fn(e, args)
	case value.Closure:
		return callClosure(head.Clos, args, c)
	default:
		return value.NewUnit()
	}
}

// callClosure implements the closure call protocol: a new child frame
// parented at the captured environment; bind
// min(declared-arity, provided-count) positional parameters; evaluate
// body forms. The child frame is never freed eagerly, since an inner
// closure may have captured it; reclamation is the collector's job.
func callClosure(clos *value.ClosureObj, args []value.Value, c *gc.Collector) value.Value {
	fnNode := clos.FnNode

	parent, ok := clos.Env.(*env.Env)
	if !ok {
		return value.NewUnit()
	}

	child := env.New(parent)

	params := fnNode.Children[1].Children

	n := len(params)
	if len(args) < n {
		n = len(args)
	}

	for i := 0; i < n; i++ {
		p := params[i]
		child.Define(p.Children[0].Sym, p.Children[2].Type, args[i])
	}

	body := fnNode.Children[4:]

	var result value.Value = value.NewUnit()

	for _, b := range body {
		result = Eval(b, child, c)
	}

	return result
}

// suggestThreshold is the minimum Jaro-Winkler similarity before a bound
// name is considered a plausible typo fix rather than noise.
const suggestThreshold = 0.85

// suggest finds the bound name most similar to want, for the "did you mean"
// hint on an unbound-name error.
func suggest(want string, candidates []string) string {
	best := ""
	bestScore := suggestThreshold

	for _, c := range candidates {
		score := smetrics.JaroWinkler(want, c, 0.7, 4)
		if score > bestScore {
			bestScore = score
			best = c
		}
	}

	return best
}

// quoteForm converts an unevaluated form to a value, recursively for
// lists.
func quoteForm(n *ast.Node, c *gc.Collector) value.Value {
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
			items[i] = quoteForm(ch, c)
		}

		return value.NewList(c, items)
	default:
		return value.NewUnit()
	}
}

// quasiquote walks n; a child list headed by `unquote` is evaluated in
// place; one headed by `unquote-splicing` is evaluated and, if the result
// is a List, its elements are spliced into the enclosing list. The splice
// test is depth-1 at each list position: nested quasiquotes are not
// tracked.
func quasiquote(n *ast.Node, e *env.Env, c *gc.Collector) value.Value {
	if n.Kind != ast.LIST {
		return quoteForm(n, c)
	}

	if n.Head() == "unquote" && len(n.Children) == 2 {
		return Eval(n.Children[1], e, c)
	}

	var items []value.Value

	for _, ch := range n.Children {
		if ch.IsList() && ch.Head() == "unquote-splicing" && len(ch.Children) == 2 {
			v := Eval(ch.Children[1], e, c)

			if v.Kind == value.List {
				items = append(items, v.ListV.Items...)
			} else {
				items = append(items, v)
			}

			continue
		}

		items = append(items, quasiquote(ch, e, c))
	}

	return value.NewList(c, items)
}
