// Package vet implements `sqale vet`'s static diagnostics over a parsed
// SQALE form tree: each Check inspects the tree for one category of smell
// and reports Issues at a severity, independent of the type checker
// (which rejects programs outright; vet flags programs that type-check
// fine but are probably wrong).
package vet

import (
	"fmt"

	"github.com/sqale-lang/sqale/ast"
	"github.com/sqale-lang/sqale/parser"
)

// Severity is the three-level scale checks report at.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue is one finding, positioned at the offending form.
type Issue struct {
	File     string
	Line     int
	Column   int
	Severity Severity
	Category string
	Check    string
	Message  string
}

func (i *Issue) String() string {
	return fmt.Sprintf("%s:%d:%d: %s [%s/%s] %s", i.File, i.Line, i.Column, i.Severity, i.Category, i.Check, i.Message)
}

// Check inspects top for one category of issue.
type Check interface {
	Name() string
	Category() string
	Analyze(file string, top *ast.Node) []*Issue
}

// Config selects which checks run and the minimum severity to report.
type Config struct {
	Checks      []string
	MinSeverity Severity
}

// DefaultConfig enables every built-in check, reporting from info
// severity up.
func DefaultConfig() *Config {
	return &Config{
		Checks:      []string{"arithmetic", "bindings", "concurrency"},
		MinSeverity: SeverityInfo,
	}
}

var registry = map[string]Check{
	"arithmetic":  &DivByZeroCheck{},
	"bindings":    &ShadowCheck{},
	"concurrency": &SpawnNoChannelCheck{},
}

// Analyzer runs a Config's checks over one or more source files.
type Analyzer struct {
	config *Config
	issues []*Issue
}

func NewAnalyzer(config *Config) *Analyzer {
	if config == nil {
		config = DefaultConfig()
	}

	return &Analyzer{config: config}
}

// AnalyzeSource parses src (named file for diagnostics) and runs every
// enabled check over the resulting tree. A parse error is returned as-is;
// vet does not require the program to type-check.
func (a *Analyzer) AnalyzeSource(file, src string) error {
	top, err := parser.New(file, src).ParseTopLevel()
	if err != nil {
		return fmt.Errorf("vet: parsing %s: %w", file, err)
	}

	for _, name := range a.config.Checks {
		check, ok := registry[name]
		if !ok {
			continue
		}

		for _, issue := range check.Analyze(file, top) {
			if severityRank(issue.Severity) >= severityRank(a.config.MinSeverity) {
				a.issues = append(a.issues, issue)
			}
		}
	}

	return nil
}

// Issues returns every issue accumulated across AnalyzeSource calls so far.
func (a *Analyzer) Issues() []*Issue { return a.issues }

func severityRank(s Severity) int {
	switch s {
	case SeverityInfo:
		return 0
	case SeverityWarning:
		return 1
	case SeverityError:
		return 2
	default:
		return 0
	}
}
