package module

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sqale-lang/sqale/arena"
	"github.com/sqale-lang/sqale/ast"
	"github.com/sqale-lang/sqale/env"
)

func TestResolveLiteralPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "util.sq")

	if err := os.WriteFile(file, []byte(`[def x : Int 1]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	l := NewLoader(env.New(nil), func(*ast.Node, *env.Env, *arena.Arena) error { return nil })

	got, err := l.Resolve(file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != file {
		abs, _ := filepath.Abs(file)
		if got != abs {
			t.Fatalf("got %q, want %q", got, file)
		}
	}
}

func TestResolveDottedModuleSearchesCurrentDir(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()

	defer os.Chdir(wd)

	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	if err := os.MkdirAll("a", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := os.WriteFile(filepath.Join("a", "b.sq"), []byte(`[def x : Int 1]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	l := NewLoader(env.New(nil), func(*ast.Node, *env.Env, *arena.Arena) error { return nil })

	path, err := l.Resolve("a.b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if filepath.Base(path) != "b.sq" {
		t.Fatalf("got %q", path)
	}
}

func TestImportRunsPipelineOnceEvenIfImportedTwice(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "once.sq")

	if err := os.WriteFile(file, []byte(`[def x : Int 1]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	runs := 0

	l := NewLoader(env.New(nil), func(*ast.Node, *env.Env, *arena.Arena) error {
		runs++
		return nil
	})

	if err := l.Import(file); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := l.Import(file); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if runs != 1 {
		t.Fatalf("expected pipeline to run exactly once, got %d", runs)
	}
}

func TestResolveMissingModuleErrors(t *testing.T) {
	l := NewLoader(env.New(nil), func(*ast.Node, *env.Env, *arena.Arena) error { return nil })

	if _, err := l.Resolve("does.not.exist"); err == nil {
		t.Fatal("expected an error for an unresolvable module")
	}
}
