package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Type represents the tag in the Value tagged union.
type Type uint8

const (
	TypeVoid Type = iota // no value produced
	TypeInt
	TypeFloat
	TypeBool
	TypeChar
	TypeList
	TypeBlock
)

var typeNames = [...]string{
	TypeVoid:  "Void",
	TypeInt:   "Integer",
	TypeFloat: "Float",
	TypeBool:  "Boolean",
	TypeChar:  "Character",
	TypeList:  "List",
	TypeBlock: "Block",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", t)
}

// Value is a tagged union. Scalars live in Data; lists keep a []Value and
// blocks keep their body in Opaque.
type Value struct {
	Type   Type
	Data   uint64
	Opaque any
}

// Void is the "no value" marker returned by effect-only instructions.
var Void = Value{}

func Int(i int64) Value { return Value{Type: TypeInt, Data: uint64(i)} }

func Float(f float64) Value { return Value{Type: TypeFloat, Data: math.Float64bits(f)} }

func Char(r rune) Value { return Value{Type: TypeChar, Data: uint64(r)} }

func Bool(b bool) Value {
	if b {
		return Value{Type: TypeBool, Data: 1}
	}
	return Value{Type: TypeBool}
}

// List wraps elements without copying them.
func List(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{Type: TypeList, Opaque: elems}
}

// String desugars text into a list of characters.
func String(s string) Value {
	elems := make([]Value, 0, len(s))
	for _, r := range s {
		elems = append(elems, Char(r))
	}
	return Value{Type: TypeList, Opaque: elems}
}

// Block wraps an unevaluated body. The body renders itself as sided source.
func Block(body fmt.Stringer) Value {
	return Value{Type: TypeBlock, Opaque: body}
}

// Int returns the value as int64.
func (v Value) Int() int64 {
	return int64(v.Data)
}

// Float returns the value as float64, widening integers.
func (v Value) Float() float64 {
	if v.Type == TypeFloat {
		return math.Float64frombits(v.Data)
	}
	return float64(int64(v.Data))
}

func (v Value) Bool() bool { return v.Data != 0 }

func (v Value) Char() rune { return rune(v.Data) }

// Elems returns the elements of a list value. Callers must not mutate it.
func (v Value) Elems() []Value {
	if l, ok := v.Opaque.([]Value); ok {
		return l
	}
	return nil
}

// Body returns the body of a block value.
func (v Value) Body() fmt.Stringer {
	if b, ok := v.Opaque.(fmt.Stringer); ok {
		return b
	}
	return nil
}

func (v Value) IsNumber() bool { return v.Type == TypeInt || v.Type == TypeFloat }

// IsText reports whether v is a list made only of characters.
// The empty list counts as text.
func (v Value) IsText() bool {
	if v.Type != TypeList {
		return false
	}
	for _, el := range v.Elems() {
		if el.Type != TypeChar {
			return false
		}
	}
	return true
}

// Text concatenates the characters of a text list.
func (v Value) Text() string {
	var sb strings.Builder
	for _, el := range v.Elems() {
		sb.WriteRune(el.Char())
	}
	return sb.String()
}

// Truthy derives the boolean interpretation used by logic and control flow.
func (v Value) Truthy() bool {
	switch v.Type {
	case TypeInt:
		return v.Int() != 0
	case TypeFloat:
		return v.Float() != 0
	case TypeBool:
		return v.Bool()
	case TypeChar:
		return v.Char() != 0
	case TypeList:
		return len(v.Elems()) > 0
	case TypeBlock:
		return true
	default:
		return false
	}
}

// Equal compares two values structurally. Blocks compare by source text.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case TypeFloat:
		return v.Float() == o.Float()
	case TypeList:
		a, b := v.Elems(), o.Elems()
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !a[i].Equal(b[i]) {
				return false
			}
		}
		return true
	case TypeBlock:
		return v.Format() == o.Format()
	case TypeVoid:
		return true
	default:
		return v.Data == o.Data
	}
}

// Format returns the canonical literal text of the value.
func (v Value) Format() string {
	var sb strings.Builder
	v.format(&sb)
	return sb.String()
}

func (v Value) String() string { return v.Format() }

// Display renders a value for output instructions: text lists print
// their characters verbatim, everything else prints its canonical form.
func (v Value) Display() string {
	if v.IsText() {
		return v.Text()
	}
	return v.Format()
}

func (v Value) format(sb *strings.Builder) {
	switch v.Type {
	case TypeInt:
		sb.WriteString(strconv.FormatInt(v.Int(), 10))
	case TypeFloat:
		sb.WriteString(FormatFloat(v.Float()))
	case TypeBool:
		sb.WriteString(strconv.FormatBool(v.Bool()))
	case TypeChar:
		sb.WriteByte('\'')
		sb.WriteString(EscapeRune(v.Char(), '\''))
		sb.WriteByte('\'')
	case TypeList:
		sb.WriteByte('[')
		for i, el := range v.Elems() {
			if i > 0 {
				sb.WriteString(", ")
			}
			el.format(sb)
		}
		sb.WriteByte(']')
	case TypeBlock:
		sb.WriteByte('{')
		if body := v.Body(); body != nil {
			sb.WriteString(body.String())
		}
		sb.WriteByte('}')
	default:
		sb.WriteString("<void>")
	}
}

// FormatFloat renders a float so that it reads back as a float literal.
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".IN") {
		s += ".0"
	}
	return s
}

// EscapeRune renders r the way it would be written inside a literal
// delimited by quote.
func EscapeRune(r rune, quote rune) string {
	switch r {
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	case '\\':
		return `\\`
	case 0:
		return `\0`
	case quote:
		return `\` + string(quote)
	}
	return string(r)
}
