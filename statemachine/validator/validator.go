// Package validator lints chart configurations beyond the structural checks done at
// load time: unreachable states, dead ends, shadowed candidates and unknown names.
package validator

import (
	"fmt"
	"strings"

	"github.com/amp-labs/amp-a11y/statemachine"
)

// Severity says whether an issue makes a chart invalid.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}

	return "error"
}

// Issue is one finding. Code is a stable identifier such as "UNREACHABLE_STATE".
type Issue struct {
	Severity Severity
	Code     string
	Message  string
	Location Location
}

// Location identifies where an issue occurred. Empty fields do not apply.
type Location struct {
	File  string
	State string
	Event string
}

func (l Location) String() string {
	var parts []string

	for _, p := range [...]struct{ key, val string }{{"file", l.File}, {"state", l.State}, {"event", l.Event}} {
		if p.val != "" {
			parts = append(parts, p.key+": "+p.val)
		}
	}

	return strings.Join(parts, ", ")
}

// Report collects the issues found by a set of rules, in rule order.
type Report struct {
	Issues []Issue
}

// Valid reports whether no issue is an error.
func (r Report) Valid() bool { return len(r.Errors()) == 0 }

// Errors returns the error issues.
func (r Report) Errors() []Issue { return r.filter(Error) }

// Warnings returns the warning issues.
func (r Report) Warnings() []Issue { return r.filter(Warning) }

func (r Report) filter(s Severity) []Issue {
	var out []Issue

	for _, is := range r.Issues {
		if is.Severity == s {
			out = append(out, is)
		}
	}

	return out
}

// Strict returns a copy of the report with every warning promoted to an error.
func (r Report) Strict() Report {
	out := Report{Issues: make([]Issue, len(r.Issues))}

	for i, is := range r.Issues {
		is.Severity = Error
		out.Issues[i] = is
	}

	return out
}

// Codes returns every issue code, errors first.
func (r Report) Codes() []string {
	codes := make([]string, 0, len(r.Issues))

	for _, is := range append(r.Errors(), r.Warnings()...) {
		codes = append(codes, is.Code)
	}

	return codes
}

func (r Report) String() string {
	if len(r.Issues) == 0 {
		return "chart is valid\n"
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "%d error(s), %d warning(s)\n", len(r.Errors()), len(r.Warnings()))

	for _, is := range r.Issues {
		fmt.Fprintf(&sb, "  %s [%s] %s", is.Severity, is.Code, is.Message)

		if loc := is.Location.String(); loc != "" {
			fmt.Fprintf(&sb, " (%s)", loc)
		}

		sb.WriteByte('\n')
	}

	return sb.String()
}

// Validate runs rules against config, or DefaultRules when none are given.
func Validate(config *statemachine.ChartConfig, rules ...Rule) Report {
	if len(rules) == 0 {
		rules = DefaultRules()
	}

	var report Report

	for _, rule := range rules {
		report.Issues = append(report.Issues, rule.Check(config)...)
	}

	return report
}

// ValidateFile loads a chart file and validates it. Issues are stamped with path.
func ValidateFile(path string, rules ...Rule) (Report, error) {
	config, err := statemachine.LoadChartConfig(path, nil)
	if err != nil {
		return Report{Issues: []Issue{{
			Code:     "CONFIG_LOAD_FAILED",
			Message:  err.Error(),
			Location: Location{File: path},
		}}}, err
	}

	report := Validate(config, rules...)

	for i := range report.Issues {
		if report.Issues[i].Location.File == "" {
			report.Issues[i].Location.File = path
		}
	}

	return report, nil
}
