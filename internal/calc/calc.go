// Package calc evaluates calculator operations.
//
// Apply is a pure function of its inputs. Arithmetic never wraps or
// saturates: a result that does not fit in 32 unsigned bits is an error.
package calc

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/roach88/calculator/internal/ir"
)

var (
	ErrOverflow         = errors.New("calc: overflow")
	ErrUnderflow        = errors.New("calc: underflow")
	ErrDivideByZero     = errors.New("calc: divide by zero")
	ErrUnknownOperation = errors.New("calc: unknown operation")
)

// Apply returns the value that results from applying op to current.
func Apply(current uint32, op ir.Operation) (uint32, error) {
	switch op.Kind {
	case ir.OpReset:
		return 0, nil

	case ir.OpAdd:
		sum, carry := bits.Add32(current, op.Operand, 0)
		if carry != 0 {
			return 0, fmt.Errorf("%w: %d + %d", ErrOverflow, current, op.Operand)
		}
		return sum, nil

	case ir.OpSubtract:
		diff, borrow := bits.Sub32(current, op.Operand, 0)
		if borrow != 0 {
			return 0, fmt.Errorf("%w: %d - %d", ErrUnderflow, current, op.Operand)
		}
		return diff, nil

	case ir.OpMultiply:
		hi, lo := bits.Mul32(current, op.Operand)
		if hi != 0 {
			return 0, fmt.Errorf("%w: %d * %d", ErrOverflow, current, op.Operand)
		}
		return lo, nil

	case ir.OpDivide:
		if op.Operand == 0 {
			return 0, fmt.Errorf("%w: %d / 0", ErrDivideByZero, current)
		}
		return current / op.Operand, nil

	case ir.OpSet:
		return op.Operand, nil

	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownOperation, op.Kind)
	}
}
