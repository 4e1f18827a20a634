package spec

import (
	"fmt"
	"strconv"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	KindString ValueKind = iota
	KindBool
)

// Value is a single call argument: either a string or a boolean.
type Value struct {
	kind ValueKind
	str  string
	b    bool
}

// StringValue returns a string-valued argument.
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// BoolValue returns a boolean-valued argument.
func BoolValue(b bool) Value {
	return Value{kind: KindBool, b: b}
}

func (v Value) Kind() ValueKind {
	return v.kind
}

// String renders the value as it appears in an argument vector.
func (v Value) String() string {
	if v.kind == KindBool {
		return strconv.FormatBool(v.b)
	}
	return v.str
}

// Truthy reports whether the value is a non-empty string or true.
func (v Value) Truthy() bool {
	if v.kind == KindBool {
		return v.b
	}
	return v.str != ""
}

// Arguments is the per-call mapping from argument name to value.
type Arguments map[string]Value

// ArgumentsFromMap converts decoded JSON call arguments. Strings and booleans
// map directly and nulls are dropped; any other value is an error.
func ArgumentsFromMap(raw map[string]any) (Arguments, error) {
	args := make(Arguments, len(raw))
	for name, val := range raw {
		switch v := val.(type) {
		case nil:
			continue
		case string:
			args[name] = StringValue(v)
		case bool:
			args[name] = BoolValue(v)
		default:
			return nil, fmt.Errorf("argument %q: unsupported value of type %T", name, val)
		}
	}
	return args, nil
}
