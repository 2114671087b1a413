package stdlib

import (
	"fmt"
	"math"

	"github.com/agenthands/ndeque/pkg/compiler/ast"
	"github.com/agenthands/ndeque/pkg/core/value"
	"github.com/agenthands/ndeque/pkg/vm"
)

// numeric applies an Int/Int or promoted Float/Float rule to a pair of
// numbers. a is the operand popped first.
func numeric(
	what string,
	a, b value.Value,
	ints func(x, y int64) (value.Value, error),
	floats func(x, y float64) (value.Value, error),
) (value.Value, error) {
	if !a.IsNumber() || !b.IsNumber() {
		return value.Void, invalid(what, a, b)
	}
	if a.Type == value.TypeInt && b.Type == value.TypeInt {
		return ints(a.Int(), b.Int())
	}
	return floats(a.Float(), b.Float())
}

func isZero(v value.Value) bool {
	return v.IsNumber() && v.Float() == 0
}

// Add: ( a b -- a+b )
func Add(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	return numeric("addition", args[0], args[1],
		func(x, y int64) (value.Value, error) { return value.Int(x + y), nil },
		func(x, y float64) (value.Value, error) { return value.Float(x + y), nil })
}

// Sub: ( a b -- a-b )
func Sub(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	return numeric("subtraction", args[0], args[1],
		func(x, y int64) (value.Value, error) { return value.Int(x - y), nil },
		func(x, y float64) (value.Value, error) { return value.Float(x - y), nil })
}

// Mul: ( a b -- a*b )
func Mul(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	return numeric("multiplication", args[0], args[1],
		func(x, y int64) (value.Value, error) { return value.Int(x * y), nil },
		func(x, y float64) (value.Value, error) { return value.Float(x * y), nil })
}

// Div truncates the quotient. With a Float operand the truncated quotient
// is returned as a Float.
func Div(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	if isZero(args[1]) && args[0].IsNumber() {
		return value.Void, ErrDivisionByZero
	}
	return numeric("division", args[0], args[1],
		func(x, y int64) (value.Value, error) { return value.Int(x / y), nil },
		func(x, y float64) (value.Value, error) { return value.Float(math.Trunc(x / y)), nil })
}

// FloatDiv always yields a Float.
func FloatDiv(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	if isZero(args[1]) && args[0].IsNumber() {
		return value.Void, ErrDivisionByZero
	}
	div := func(x, y float64) (value.Value, error) { return value.Float(x / y), nil }
	return numeric("division", args[0], args[1],
		func(x, y int64) (value.Value, error) { return div(float64(x), float64(y)) },
		div)
}

// Mod takes the sign of the dividend.
func Mod(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	if isZero(args[1]) && args[0].IsNumber() {
		return value.Void, ErrModuloByZero
	}
	return numeric("modulo", args[0], args[1],
		func(x, y int64) (value.Value, error) {
			if y == -1 {
				return value.Int(0), nil
			}
			return value.Int(x % y), nil
		},
		func(x, y float64) (value.Value, error) { return value.Float(math.Mod(x, y)), nil })
}

// Exp: ( a b -- a^b )
// Stays integral for a non-negative Integer exponent.
func Exp(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	return numeric("exponentiation", args[0], args[1],
		func(x, y int64) (value.Value, error) {
			if y < 0 {
				return value.Float(math.Pow(float64(x), float64(y))), nil
			}
			return value.Int(ipow(x, y)), nil
		},
		func(x, y float64) (value.Value, error) { return value.Float(math.Pow(x, y)), nil })
}

func ipow(base, exp int64) int64 {
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

// Log: ( a b -- log_b(a) )
func Log(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	a, b := args[0], args[1]
	if !a.IsNumber() || !b.IsNumber() {
		return value.Void, invalid("logarithm", a, b)
	}
	x, base := a.Float(), b.Float()
	if x <= 0 || base <= 0 || base == 1 {
		return value.Void, fmt.Errorf("%w for logarithm: log of %s in base %s is undefined", ErrInvalidOperands, a, b)
	}
	return value.Float(math.Log(x) / math.Log(base)), nil
}

func step(what string, v value.Value, delta int64) (value.Value, error) {
	switch v.Type {
	case value.TypeInt:
		return value.Int(v.Int() + delta), nil
	case value.TypeFloat:
		return value.Float(v.Float() + float64(delta)), nil
	}
	return value.Void, invalid(what, v)
}

// Dec: ( a -- a-1 )
func Dec(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	return step("decrement", args[0], -1)
}

// Inc: ( a -- a+1 )
func Inc(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	return step("increment", args[0], 1)
}

// bits returns the raw 64-bit pattern of a number: two's complement for
// Integers, IEEE-754 for Floats.
func bits(v value.Value) uint64 {
	if v.Type == value.TypeFloat {
		return math.Float64bits(v.Float())
	}
	return uint64(v.Int())
}

func bitwise(what string, a, b value.Value, op func(x, y uint64) uint64) (value.Value, error) {
	if !a.IsNumber() || !b.IsNumber() {
		return value.Void, invalid(what, a, b)
	}
	return value.Int(int64(op(bits(a), bits(b)))), nil
}

// BitAnd: ( a b -- a&b )
func BitAnd(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	return bitwise("bitwise and", args[0], args[1], func(x, y uint64) uint64 { return x & y })
}

// BitOr: ( a b -- a|b )
func BitOr(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	return bitwise("bitwise or", args[0], args[1], func(x, y uint64) uint64 { return x | y })
}

// BitXor: ( a b -- a^b )
func BitXor(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	return bitwise("bitwise xor", args[0], args[1], func(x, y uint64) uint64 { return x ^ y })
}

// BitNot: ( a -- ^a )
func BitNot(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	if !args[0].IsNumber() {
		return value.Void, invalid("bitwise not", args[0])
	}
	return value.Int(int64(^bits(args[0]))), nil
}
