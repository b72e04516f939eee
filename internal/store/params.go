package store

import (
	"database/sql"
	"fmt"

	"github.com/roach88/ormlite/internal/sqlgen"
)

// paramNames returns the distinct @Name references in text, in order of
// first appearance. Quoted strings, quoted identifiers and comments are
// skipped.
func paramNames(text string) []string {
	var (
		names []string
		seen  = make(map[string]bool)
	)
	for i := 0; i < len(text); i++ {
		switch c := text[i]; {
		case c == '\'' || c == '"' || c == '`':
			i = skipQuoted(text, i, c)
		case c == '[':
			for i++; i < len(text) && text[i] != ']'; i++ {
			}
		case c == '-' && i+1 < len(text) && text[i+1] == '-':
			for i += 2; i < len(text) && text[i] != '\n'; i++ {
			}
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			i += 2
			for i+1 < len(text) && !(text[i] == '*' && text[i+1] == '/') {
				i++
			}
			i++
		case c == '@':
			j := i + 1
			for j < len(text) && isIdentByte(text[j], j == i+1) {
				j++
			}
			if j > i+1 {
				name := text[i+1 : j]
				if !seen[name] {
					seen[name] = true
					names = append(names, name)
				}
			}
			i = j - 1
		}
	}
	return names
}

// skipQuoted returns the index of the quote closing the literal opened at
// start. A doubled quote is an escaped quote.
func skipQuoted(text string, start int, quote byte) int {
	for i := start + 1; i < len(text); i++ {
		if text[i] != quote {
			continue
		}
		if i+1 < len(text) && text[i+1] == quote {
			i++
			continue
		}
		return i
	}
	return len(text)
}

func isIdentByte(c byte, first bool) bool {
	switch {
	case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return !first
	}
	return false
}

// args matches the @Name references in text to bindings and returns them
// as driver arguments. Bindings the text does not reference are dropped.
func args(text string, bindings []sqlgen.Binding) ([]any, error) {
	names := paramNames(text)
	if len(names) == 0 {
		return nil, nil
	}
	byName := make(map[string]any, len(bindings))
	for _, b := range bindings {
		byName[b.Name] = b.Value
	}
	out := make([]any, 0, len(names))
	for _, name := range names {
		v, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("parameter @%s is not bound", name)
		}
		out = append(out, sql.Named(name, v))
	}
	return out, nil
}
