package stdlib

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/agenthands/ndeque/pkg/compiler/ast"
	"github.com/agenthands/ndeque/pkg/core/value"
	"github.com/agenthands/ndeque/pkg/vm"
)

func castError(v value.Value, to value.Type) error {
	return fmt.Errorf("%w %v %s to %v", ErrCast, v.Type, v.Format(), to)
}

// ToInt: ( a -- int )
// Floats truncate toward zero; characters yield their code point; text is
// parsed as a decimal integer.
func ToInt(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	v := args[0]
	switch v.Type {
	case value.TypeInt:
		return v, nil
	case value.TypeFloat:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
			return value.Void, castError(v, value.TypeInt)
		}
		return value.Int(int64(f)), nil
	case value.TypeChar:
		return value.Int(int64(v.Char())), nil
	case value.TypeBool:
		if v.Bool() {
			return value.Int(1), nil
		}
		return value.Int(0), nil
	case value.TypeList:
		if v.IsText() {
			i, err := strconv.ParseInt(strings.TrimSpace(v.Text()), 10, 64)
			if err == nil {
				return value.Int(i), nil
			}
		}
	}
	return value.Void, castError(v, value.TypeInt)
}

// ToFloat: ( a -- float )
func ToFloat(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	v := args[0]
	switch v.Type {
	case value.TypeInt, value.TypeFloat:
		return value.Float(v.Float()), nil
	case value.TypeChar:
		return value.Float(float64(v.Char())), nil
	case value.TypeBool:
		if v.Bool() {
			return value.Float(1), nil
		}
		return value.Float(0), nil
	case value.TypeList:
		if v.IsText() {
			f, err := strconv.ParseFloat(strings.TrimSpace(v.Text()), 64)
			if err == nil {
				return value.Float(f), nil
			}
		}
	}
	return value.Void, castError(v, value.TypeFloat)
}

// ToChar: ( a -- char )
// Integers are read as code points; a one-character text yields that character.
func ToChar(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	v := args[0]
	switch v.Type {
	case value.TypeChar:
		return v, nil
	case value.TypeInt:
		if i := v.Int(); i >= 0 && i <= utf8.MaxRune && utf8.ValidRune(rune(i)) {
			return value.Char(rune(i)), nil
		}
	case value.TypeList:
		if elems := v.Elems(); len(elems) == 1 && elems[0].Type == value.TypeChar {
			return elems[0], nil
		}
	}
	return value.Void, castError(v, value.TypeChar)
}

// ToBool: ( a -- bool )
func ToBool(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	return value.Bool(args[0].Truthy()), nil
}
