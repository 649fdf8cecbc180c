package m68k

import (
	"errors"
	"fmt"
)

var (
	// ErrOperandRange is returned when an operand does not fit its encoding field.
	ErrOperandRange = errors.New("operand out of range")
	// ErrDisplacementRange is returned when a relative branch target can not be
	// expressed by the displacement field of the chosen instruction form.
	ErrDisplacementRange = errors.New("branch displacement out of range")
	// ErrInvalidCondition is returned for condition codes that have a different
	// meaning in the requested instruction, like F for Bcc which encodes BSR.
	ErrInvalidCondition = errors.New("invalid condition for instruction")
)

// EncodingError describes an operand that could not be encoded.
type EncodingError struct {
	Mnemonic string
	Operand  string
	Value    int64
	Err      error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding %s: %s value %d ($%X): %s", e.Mnemonic, e.Operand, e.Value, e.Value, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

func rangeError(mnemonic, operand string, value int64, err error) error {
	return &EncodingError{
		Mnemonic: mnemonic,
		Operand:  operand,
		Value:    value,
		Err:      err,
	}
}
