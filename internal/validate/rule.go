package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/ormlite/internal/schema"
)

// Result is the verdict of one rule on one value.
type Result struct {
	Valid   bool
	Message string
}

var pass = Result{Valid: true}

func fail(format string, args ...any) Result {
	return Result{Message: fmt.Sprintf(format, args...)}
}

// emailPattern is the usual local@domain.tld shape.
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(\.[A-Za-z0-9\-]+)*\.[A-Za-z]{2,}$`)

// Check evaluates rule against value.
func Check(rule schema.Rule, value any) Result {
	text, present := stringify(value)
	trimmed := strings.TrimSpace(text)
	if !present || trimmed == "" {
		return fail("%s must not be empty", rule.Display)
	}

	switch rule.Kind {
	case schema.RuleRequired:
		return pass

	case schema.RuleRange:
		n, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil || n < int64(rule.Min) || n > int64(rule.Max) {
			return fail("%s must be between %d and %d", rule.Display, rule.Min, rule.Max)
		}
		return pass

	case schema.RuleFixedLength:
		if runeLen(trimmed) != rule.Length {
			return fail("%s length must be exactly %d", rule.Display, rule.Length)
		}
		return pass

	case schema.RuleLengthRange:
		if n := runeLen(trimmed); n < rule.Min || n > rule.Max {
			return fail("%s length must be between %d and %d", rule.Display, rule.Min, rule.Max)
		}
		return pass

	case schema.RuleEmail:
		if !emailPattern.MatchString(trimmed) {
			return fail("%s format is invalid", rule.Display)
		}
		return pass

	case schema.RulePattern:
		re, err := compiled(rule.Pattern)
		if err != nil || !re.MatchString(text) {
			return fail("please enter a valid %s", rule.Display)
		}
		return pass

	default:
		return fail("%s has unknown rule %q", rule.Display, rule.Kind)
	}
}

// stringify renders value the way rules see it. The bool is false when the
// value is absent.
func stringify(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case []byte:
		return string(v), true
	case time.Time:
		if v.IsZero() {
			return "", true
		}
		return v.Format(time.RFC3339), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return fmt.Sprint(v), true
	}
}

func runeLen(s string) int {
	return utf8.RuneCountInString(norm.NFC.String(s))
}

var patterns sync.Map // string -> *regexp.Regexp

func compiled(expr string) (*regexp.Regexp, error) {
	if re, ok := patterns.Load(expr); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	patterns.Store(expr, re)
	return re, nil
}
