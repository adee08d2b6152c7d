// Package expression provides safe arithmetic expression evaluation.
// Expressions come from configuration files and may reference context
// variables with a sigil prefix ($name). Evaluation never executes
// anything beyond arithmetic: after substitution the string is reduced
// to a whitelisted character set and parsed with a restricted grammar.
package expression

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"platform-cost/core/types"
	"platform-cost/internal/logging"
)

// refPattern matches a sigil-prefixed variable reference
var refPattern = regexp.MustCompile(`\$[A-Za-z_][A-Za-z0-9_]*`)

// Evaluate substitutes context variables into expr and evaluates the
// resulting arithmetic. Unresolved references become 0 with a warning.
// Malformed or non-finite expressions evaluate to 0, never an error:
// individual bad expressions must not poison aggregate totals.
func Evaluate(expr string, vars types.Variables) float64 {
	substituted := Substitute(expr, vars)
	sanitized := sanitize(substituted)

	if strings.TrimSpace(sanitized) == "" {
		return 0
	}

	result, err := parseArithmetic(sanitized)
	if err != nil {
		logging.Warn("expression did not parse, using 0",
			zap.String("expression", expr),
			zap.Error(err))
		return 0
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		logging.Warn("expression produced a non-finite result, using 0",
			zap.String("expression", expr))
		return 0
	}
	return result
}

// Substitute replaces every sigil-prefixed context key in expr with its
// numeric value. Keys are applied longest-first so a variable name that
// is a prefix of another (rate vs rate_advanced) cannot be partially
// substituted. Remaining references resolve to 0.
func Substitute(expr string, vars types.Variables) string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	for _, k := range keys {
		if !strings.Contains(expr, types.Sigil+k) {
			continue
		}
		pattern := regexp.MustCompile(`\$` + regexp.QuoteMeta(k) + `\b`)
		expr = pattern.ReplaceAllString(expr, formatNumber(vars[k]))
	}

	// Anything still carrying the sigil is unresolved
	expr = refPattern.ReplaceAllStringFunc(expr, func(ref string) string {
		logging.Warn("unresolved variable in expression, using 0",
			zap.String("variable", strings.TrimPrefix(ref, types.Sigil)))
		return "0"
	})

	return expr
}

// ExtractRefs returns every sigil-prefixed variable name in s, in order
// of first occurrence, without duplicates.
func ExtractRefs(s string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, ref := range refPattern.FindAllString(s, -1) {
		name := strings.TrimPrefix(ref, types.Sigil)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// sanitize strips every character outside the arithmetic whitelist.
// This is the safety boundary: configuration strings cannot smuggle
// anything past it, whatever they contain.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' || r == '-' || r == '*' || r == '/':
			b.WriteRune(r)
		case r == '(' || r == ')' || r == '.':
			b.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func formatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	// Wrap negatives so "4*$x" with x=-3 substitutes to "4*(-3)"
	if strings.HasPrefix(s, "-") {
		return "(" + s + ")"
	}
	return s
}
