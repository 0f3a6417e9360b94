package env

import (
	"os"
	"regexp"
	"strings"
)

var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// WarnFunc is a function type for handling warnings
type WarnFunc func(format string, args ...any)

// Expander replaces {{$VAR}} with environment variables and {{name}} with
// its own variables. Unresolved placeholders are left in place.
type Expander struct {
	variables map[string]string
	lookup    func(string) (string, bool)
	warnFunc  WarnFunc
}

// NewExpander creates an expander over the process environment
func NewExpander(variables map[string]string) *Expander {
	if variables == nil {
		variables = make(map[string]string)
	}
	return &Expander{variables: variables, lookup: os.LookupEnv}
}

// SetWarnFunc sets a function to be called for unresolved placeholders
func (e *Expander) SetWarnFunc(fn WarnFunc) {
	e.warnFunc = fn
}

func (e *Expander) warn(format string, args ...any) {
	if e.warnFunc != nil {
		e.warnFunc(format, args...)
	}
}

// Expand resolves every placeholder in input
func (e *Expander) Expand(input string) string {
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		expr := strings.TrimSpace(match[2 : len(match)-2])

		if strings.HasPrefix(expr, "$") {
			if val, ok := e.lookup(expr[1:]); ok {
				return val
			}
			e.warn("unresolved environment variable: %s", expr)
			return match
		}

		if val, ok := e.variables[expr]; ok {
			return val
		}
		e.warn("unresolved variable: %s", expr)
		return match
	})
}

// ExpandAll expands every value of values into a new map
func (e *Expander) ExpandAll(values map[string]string) map[string]string {
	result := make(map[string]string, len(values))
	for k, v := range values {
		result[k] = e.Expand(v)
	}
	return result
}
