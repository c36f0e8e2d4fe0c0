package vm

import (
	"bytes"
	"testing"
	"time"
)

// runAndCapture runs src through a fresh VM and returns whatever it wrote
// to stdout.
func runAndCapture(t *testing.T, src string) string {
	t.Helper()

	var buf bytes.Buffer

	v := New(&buf)
	if err := v.RunSource("test.sq", src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return buf.String()
}

// End-to-end scenarios driven through a full VM.

func TestEndToEndArithmetic(t *testing.T) {
	got := runAndCapture(t, `[def x : Int 41] [def y : Int [+ x 1]] [print y]`)
	if got != "42\n" {
		t.Fatalf("got %q, want %q", got, "42\n")
	}
}

func TestEndToEndRecursiveFactorial(t *testing.T) {
	src := `[def fact : [Int -> Int] [fn [[n : Int]] : Int [if [= n 0] 1 [* n [fact [- n 1]]]]]] [print [fact 5]]`

	got := runAndCapture(t, src)
	if got != "120\n" {
		t.Fatalf("got %q, want %q", got, "120\n")
	}
}

func TestEndToEndChannelSendRecv(t *testing.T) {
	src := `[def c : [Chan Int] [chan]] [spawn [fn [] : Unit [send c 7]]] [print [recv c]]`

	done := make(chan string, 1)

	go func() {
		done <- runAndCapture(t, src)
	}()

	select {
	case got := <-done:
		if got != "7\n" {
			t.Fatalf("got %q, want %q", got, "7\n")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("program never completed: recv blocked forever")
	}
}

func TestEndToEndVector(t *testing.T) {
	src := `[def xs : [Vec Int] [vec]] [vec-push xs 1] [vec-push xs 2] [print [vec-len xs]]`

	got := runAndCapture(t, src)
	if got != "2\n" {
		t.Fatalf("got %q, want %q", got, "2\n")
	}
}

func TestEndToEndMacroTwice(t *testing.T) {
	src := `[defmacro twice [x] [quasiquote [+ [unquote x] [unquote x]]]] [print [twice 21]]`

	got := runAndCapture(t, src)
	if got != "42\n" {
		t.Fatalf("got %q, want %q", got, "42\n")
	}
}

func TestEndToEndCond(t *testing.T) {
	src := `[cond [[= 1 2] [print "a"]] [[= 2 2] [print "b"]] [else [print "c"]]]`

	got := runAndCapture(t, src)
	if got != "b\n" {
		t.Fatalf("got %q, want %q", got, "b\n")
	}
}

func TestCallMainReturnsExitCode(t *testing.T) {
	var buf bytes.Buffer

	v := New(&buf)
	if err := v.RunSource("test.sq", `[def main : [-> Int] [fn [] : Int 7]]`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	code, ok := v.CallMain()
	if !ok {
		t.Fatal("expected main to be found")
	}

	if code != 7 {
		t.Fatalf("got exit code %d, want 7", code)
	}
}

func TestCallMainReportsAbsence(t *testing.T) {
	v := New(nil)

	if _, ok := v.CallMain(); ok {
		t.Fatal("expected CallMain to report no main bound")
	}
}

func TestRunSourceReportsTypeError(t *testing.T) {
	v := New(nil)

	if err := v.RunSource("test.sq", `[def x : Int "nope"]`); err == nil {
		t.Fatal("expected a type-check error")
	}
}

func TestDefenumEndToEnd(t *testing.T) {
	src := `[defenum Color [Red Green Blue]] [print Green]`

	got := runAndCapture(t, src)
	if got != "1\n" {
		t.Fatalf("got %q, want %q", got, "1\n")
	}
}
