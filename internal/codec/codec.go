// Package codec converts between the fixed binary wire formats and the
// typed calculator values.
//
// Both formats use little-endian integers and carry no header or version:
//
//	state:       value u32                      (4 bytes)
//	instruction: tag u8 | operand u32           (5 bytes)
//
// Inputs must have exactly the expected width. Short input fails with
// ErrTruncatedInput and extra bytes fail with ErrTrailingInput; nothing is
// padded, truncated or defaulted.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/roach88/calculator/internal/ir"
)

const (
	// StateSize is the encoded width of an ir.StateRecord.
	StateSize = 4

	// OperationSize is the encoded width of an ir.Operation.
	OperationSize = 1 + 4
)

var (
	ErrTruncatedInput      = errors.New("codec: truncated input")
	ErrTrailingInput       = errors.New("codec: trailing input")
	ErrUnknownDiscriminant = errors.New("codec: unknown discriminant")
)

// DecodeState decodes the storage form of a StateRecord.
func DecodeState(b []byte) (ir.StateRecord, error) {
	if err := checkWidth("state", b, StateSize); err != nil {
		return ir.StateRecord{}, err
	}
	return ir.StateRecord{Value: binary.LittleEndian.Uint32(b)}, nil
}

// EncodeState returns a fresh StateSize buffer holding s.
func EncodeState(s ir.StateRecord) []byte {
	b := make([]byte, StateSize)
	binary.LittleEndian.PutUint32(b, s.Value)
	return b
}

// DecodeOperation decodes an instruction. The tag is checked before the
// operand width, so an unknown tag is reported as such even when short.
func DecodeOperation(b []byte) (ir.Operation, error) {
	if len(b) == 0 {
		return ir.Operation{}, fmt.Errorf("%w: instruction is empty", ErrTruncatedInput)
	}
	kind := ir.OpKind(b[0])
	if !kind.Valid() {
		return ir.Operation{}, fmt.Errorf("%w: tag %d", ErrUnknownDiscriminant, b[0])
	}
	if err := checkWidth("instruction", b, OperationSize); err != nil {
		return ir.Operation{}, err
	}
	return ir.Operation{
		Kind:    kind,
		Operand: binary.LittleEndian.Uint32(b[1:]),
	}, nil
}

// EncodeOperation returns the wire form of op.
func EncodeOperation(op ir.Operation) []byte {
	b := make([]byte, OperationSize)
	b[0] = byte(op.Kind)
	binary.LittleEndian.PutUint32(b[1:], op.Operand)
	return b
}

func checkWidth(what string, b []byte, want int) error {
	switch {
	case len(b) < want:
		return fmt.Errorf("%w: %s needs %d bytes, got %d", ErrTruncatedInput, what, want, len(b))
	case len(b) > want:
		return fmt.Errorf("%w: %s needs %d bytes, got %d", ErrTrailingInput, what, want, len(b))
	}
	return nil
}
