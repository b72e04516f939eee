package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// applyMarkers reads an orm struct tag such as `orm:"pk,identity"`.
func applyMarkers(f *Field, tag string) error {
	if tag == "" {
		return nil
	}
	for _, part := range strings.Split(tag, ",") {
		switch strings.TrimSpace(part) {
		case "pk":
			f.PrimaryKey = true
		case "identity":
			f.Identity = true
		case "-":
			f.Excluded = true
		case "":
		default:
			return fmt.Errorf("unknown orm marker %q", part)
		}
	}
	return nil
}

// ParseRules parses a validate tag into rules, preserving declaration order.
//
// Rules are separated by ';' and written as kind(args):
//
//	required(Name)
//	range(Age,1,120)
//	length(Zip,5)
//	strlen(Nick,2,4)
//	email(Email)
//	pattern(Phone,^[0-9-]+$)
//
// For pattern everything after the first comma is the expression. Parentheses
// inside the expression must balance unless escaped with a backslash.
func ParseRules(tag string) ([]Rule, error) {
	var rules []Rule
	for _, raw := range splitRules(tag) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		open := strings.IndexByte(raw, '(')
		if open < 0 || !strings.HasSuffix(raw, ")") {
			return nil, fmt.Errorf("malformed rule %q", raw)
		}
		kind := RuleKind(strings.TrimSpace(raw[:open]))
		args := raw[open+1 : len(raw)-1]
		r, err := ParseRule(kind, args)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", raw, err)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// ParseRule builds one rule from its kind and raw comma-separated arguments.
func ParseRule(kind RuleKind, args string) (Rule, error) {
	if kind == RulePattern {
		display, expr, ok := strings.Cut(args, ",")
		if !ok || strings.TrimSpace(display) == "" || expr == "" {
			return Rule{}, fmt.Errorf("pattern needs a display name and an expression")
		}
		return Rule{Kind: kind, Display: strings.TrimSpace(display), Pattern: expr}, nil
	}

	parts := strings.Split(args, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if parts[0] == "" {
		return Rule{}, fmt.Errorf("display name is required")
	}
	r := Rule{Kind: kind, Display: parts[0]}

	switch kind {
	case RuleRequired, RuleEmail:
		if len(parts) != 1 {
			return Rule{}, fmt.Errorf("%s takes only a display name", kind)
		}
	case RuleFixedLength:
		if len(parts) != 2 {
			return Rule{}, fmt.Errorf("length takes a display name and a length")
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil || n < 0 {
			return Rule{}, fmt.Errorf("invalid length %q", parts[1])
		}
		r.Length = n
	case RuleRange, RuleLengthRange:
		if len(parts) != 3 {
			return Rule{}, fmt.Errorf("%s takes a display name, a minimum and a maximum", kind)
		}
		lo, err := strconv.Atoi(parts[1])
		if err != nil {
			return Rule{}, fmt.Errorf("invalid minimum %q", parts[1])
		}
		hi, err := strconv.Atoi(parts[2])
		if err != nil {
			return Rule{}, fmt.Errorf("invalid maximum %q", parts[2])
		}
		if lo > hi {
			return Rule{}, fmt.Errorf("minimum %d exceeds maximum %d", lo, hi)
		}
		r.Min, r.Max = lo, hi
	default:
		return Rule{}, fmt.Errorf("unknown rule kind %q", kind)
	}
	return r, nil
}

// splitRules splits on ';' outside parentheses.
func splitRules(tag string) []string {
	var (
		out   []string
		depth int
		start int
	)
	for i := 0; i < len(tag); i++ {
		switch tag[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ';':
			if depth == 0 {
				out = append(out, tag[start:i])
				start = i + 1
			}
		}
	}
	return append(out, tag[start:])
}
