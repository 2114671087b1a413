package stdlib

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agenthands/ndeque/pkg/core/value"
)

var (
	ErrInvalidOperands  = errors.New("invalid operands")
	ErrDivisionByZero   = errors.New("division by zero")
	ErrModuloByZero     = errors.New("modulo by zero")
	ErrIndexOutOfBounds = errors.New("index out of bounds")
	ErrCast             = errors.New("cannot cast")
	ErrNoResult         = errors.New("block left no result")
)

// invalid reports a type mismatch, e.g. "invalid operands for addition: Float and Character".
func invalid(what string, operands ...value.Value) error {
	types := make([]string, len(operands))
	for i, v := range operands {
		types[i] = v.Type.String()
	}
	return fmt.Errorf("%w for %s: %s", ErrInvalidOperands, what, strings.Join(types, " and "))
}
