package stdlib

import (
	"cmp"

	"github.com/agenthands/ndeque/pkg/compiler/ast"
	"github.com/agenthands/ndeque/pkg/core/value"
	"github.com/agenthands/ndeque/pkg/vm"
)

// compare orders numbers (Int promoted to Float when mixed) and characters.
// ok is false for any other combination. NaN is unordered and unequal.
func compare(a, b value.Value) (c int, unordered bool, ok bool) {
	switch {
	case a.Type == value.TypeInt && b.Type == value.TypeInt:
		return cmp.Compare(a.Int(), b.Int()), false, true
	case a.IsNumber() && b.IsNumber():
		x, y := a.Float(), b.Float()
		if x != x || y != y {
			return 0, true, true
		}
		return cmp.Compare(x, y), false, true
	case a.Type == value.TypeChar && b.Type == value.TypeChar:
		return cmp.Compare(a.Char(), b.Char()), false, true
	}
	return 0, false, false
}

func ordered(what string, a, b value.Value, pred func(c int) bool) (value.Value, error) {
	c, unordered, ok := compare(a, b)
	if !ok {
		return value.Void, invalid(what, a, b)
	}
	return value.Bool(!unordered && pred(c)), nil
}

// equal takes the same operands as the ordering instructions.
func equal(a, b value.Value) (bool, error) {
	c, unordered, ok := compare(a, b)
	if !ok {
		return false, invalid("comparison", a, b)
	}
	return !unordered && c == 0, nil
}

// Eq: ( a b -- a=b )
func Eq(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	eq, err := equal(args[0], args[1])
	if err != nil {
		return value.Void, err
	}
	return value.Bool(eq), nil
}

// Ne: ( a b -- a≠b )
func Ne(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	eq, err := equal(args[0], args[1])
	if err != nil {
		return value.Void, err
	}
	return value.Bool(!eq), nil
}

// Lt: ( a b -- a<b )
func Lt(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	return ordered("comparison", args[0], args[1], func(c int) bool { return c < 0 })
}

// Gt: ( a b -- a>b )
func Gt(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	return ordered("comparison", args[0], args[1], func(c int) bool { return c > 0 })
}

// Le: ( a b -- a<=b )
func Le(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	return ordered("comparison", args[0], args[1], func(c int) bool { return c <= 0 })
}

// Ge: ( a b -- a>=b )
func Ge(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	return ordered("comparison", args[0], args[1], func(c int) bool { return c >= 0 })
}

// Not: ( a -- !a )
func Not(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	return value.Bool(!args[0].Truthy()), nil
}

// And: ( a b -- a&&b )
func And(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	return value.Bool(args[0].Truthy() && args[1].Truthy()), nil
}

// Or: ( a b -- a||b )
func Or(_ *vm.Machine, _ ast.Side, args []value.Value) (value.Value, error) {
	return value.Bool(args[0].Truthy() || args[1].Truthy()), nil
}
