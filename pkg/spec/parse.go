package spec

import (
	"strings"
	"unicode"
)

// ParseSpaced splits "name description" on the first run of whitespace.
// A token without whitespace doubles as its own description.
func ParseSpaced(token string) (name, description string) {
	head, rest := splitFirst(token)
	if rest == "" {
		return head, head
	}
	return head, rest
}

// ParseFlag parses "FLAG[=] description" into a flag declaration.
func ParseFlag(token string) FlagDecl {
	flag, description := splitFirst(token)
	if description == "" {
		description = flag
	}

	takesValue := strings.HasSuffix(flag, "=")
	if takesValue {
		flag = strings.TrimSuffix(flag, "=")
	}

	return FlagDecl{
		Flag:        flag,
		ParamName:   strings.TrimLeft(flag, "-"),
		Description: description,
		TakesValue:  takesValue,
	}
}

// splitFirst returns the first whitespace-separated field and the remainder with
// its leading whitespace removed. Trailing whitespace of the remainder is kept.
func splitFirst(s string) (head, rest string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	idx := strings.IndexFunc(s, unicode.IsSpace)
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimLeftFunc(s[idx:], unicode.IsSpace)
}

