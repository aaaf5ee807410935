// Package value defines the literal values stored in a chunk's constant pool.
package value

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind identifies the type held by a Value.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindString
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a tagged literal. The zero Value is nil.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
}

// Nil returns the nil value.
func Nil() Value {
	return Value{}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Number returns a numeric value.
func Number(n float64) Value {
	return Value{kind: KindNumber, n: n}
}

// String returns a string value.
func String(s string) Value {
	return Value{kind: KindString, s: s}
}

// Kind returns the kind of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNil returns true if the value is nil.
func (v Value) IsNil() bool {
	return v.kind == KindNil
}

// AsBool returns the boolean held by v. ok is false for other kinds.
func (v Value) AsBool() (b bool, ok bool) {
	return v.b, v.kind == KindBool
}

// AsNumber returns the number held by v. ok is false for other kinds.
func (v Value) AsNumber() (n float64, ok bool) {
	return v.n, v.kind == KindNumber
}

// AsString returns the string held by v. ok is false for other kinds.
func (v Value) AsString() (s string, ok bool) {
	return v.s, v.kind == KindString
}

// Equal reports whether two values have the same kind and contents.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == other.b
	case KindNumber:
		return v.n == other.n
	case KindString:
		return v.s == other.s
	default:
		return true
	}
}

// String returns the value formatted the way the language prints it.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.n, 'g', -1, 64)
	case KindString:
		return v.s
	default:
		return "nil"
	}
}

// Inspect returns a representation suitable for disassembly listings, with
// strings quoted.
func (v Value) Inspect() string {
	if v.kind == KindString {
		return strconv.Quote(v.s)
	}
	return v.String()
}

// Interface returns the value as a plain Go value: nil, bool, float64 or
// string.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	default:
		return nil
	}
}

// MarshalJSON encodes the value as the matching JSON scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// FromInterface converts a plain Go value into a Value. Integers are
// converted to numbers.
func FromInterface(x any) (Value, error) {
	switch x := x.(type) {
	case nil:
		return Nil(), nil
	case bool:
		return Bool(x), nil
	case float64:
		return Number(x), nil
	case float32:
		return Number(float64(x)), nil
	case int:
		return Number(float64(x)), nil
	case int64:
		return Number(float64(x)), nil
	case uint64:
		return Number(float64(x)), nil
	case string:
		return String(x), nil
	default:
		return Value{}, fmt.Errorf("value: unsupported type %T", x)
	}
}
