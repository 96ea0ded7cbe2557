package eval

import (
	"fmt"
	"strconv"
)

// Value is a runtime value. String renders it the way `print` does.
type Value interface {
	fmt.Stringer
	Type() string
}

type Number float64

func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

func (Number) Type() string {
	return "number"
}

var _ Value = Number(0)

type String string

func (s String) String() string {
	return string(s)
}

func (String) Type() string {
	return "string"
}

var _ Value = String("")

type Boolean bool

func (b Boolean) String() string {
	return strconv.FormatBool(bool(b))
}

func (Boolean) Type() string {
	return "boolean"
}

var _ Value = Boolean(false)

type Nil struct{}

func (Nil) String() string {
	return "nil"
}

func (Nil) Type() string {
	return "nil"
}

var _ Value = Nil{}

// fromLiteral converts the payload of an ast.Literal.
func fromLiteral(v any) (Value, bool) {
	switch v := v.(type) {
	case nil:
		return Nil{}, true
	case float64:
		return Number(v), true
	case string:
		return String(v), true
	case bool:
		return Boolean(v), true
	default:
		return nil, false
	}
}

// truthy: nil and false are falsy, everything else is truthy.
func truthy(v Value) bool {
	switch v := v.(type) {
	case Nil:
		return false
	case Boolean:
		return bool(v)
	default:
		return true
	}
}

// equal compares kind and value. Values of different kinds are never equal.
func equal(a, b Value) bool {
	return a == b
}
