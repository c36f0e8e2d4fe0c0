//go:build mage
// +build mage

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Format runs gofmt on all Go files.
func Format() error {
	fmt.Println("Running gofmt...")
	return sh.RunV("gofmt", "-w", ".")
}

// Vet runs go vet across every package.
func Vet() error {
	fmt.Println("Running go vet...")
	return sh.RunV("go", "vet", "./...")
}

// SqaleVet runs the sqale static-diagnostics checker over every example
// program under testdata.
func SqaleVet() error {
	fmt.Println("Running sqale vet...")

	examples, err := filepath.Glob("testdata/examples/*.sq")
	if err != nil {
		return err
	}

	for _, example := range examples {
		if err := sh.RunV("go", "run", "./cmd/sqale", "vet", example); err != nil {
			return err
		}
	}

	return nil
}

// Test runs all Go tests.
func Test() error {
	fmt.Println("Running tests...")
	return sh.RunV("go", "test", "./...")
}

// Build builds the sqale binary.
func Build() error {
	fmt.Println("Building sqale...")
	return sh.RunV("go", "build", "-o", "sqale", "./cmd/sqale")
}

// Docs regenerates the man page via `sqale docs`.
func Docs() error {
	mg.Deps(Build)
	fmt.Println("Generating man page...")
	return sh.RunV("sh", "-c", "./sqale docs > sqale.1")
}

// PreCommit runs every check a commit should pass: format, vet, test,
// build.
func PreCommit() error {
	fmt.Println("Running pre-commit checks...")
	mg.Deps(Format)
	mg.Deps(Vet)
	mg.Deps(Test)
	mg.Deps(Build)
	fmt.Println("pre-commit checks passed")
	return nil
}

// Clean removes build artifacts.
func Clean() error {
	fmt.Println("Cleaning build artifacts...")
	return sh.Run("sh", "-c", "rm -f sqale sqale.1")
}

// Default target runs PreCommit.
var Default = PreCommit
