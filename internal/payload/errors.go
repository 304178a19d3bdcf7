package payload

import (
	"errors"
	"fmt"
)

var (
	ErrMissingValue = errors.New("payload: missing value")
	ErrValueType    = errors.New("payload: value type does not match kind")
	ErrValueRange   = errors.New("payload: value out of range for kind")
	ErrShortData    = errors.New("payload: data shorter than frame")
)

// SlotError names the slot a value failed on.
type SlotError struct {
	Slot string
	Err  error
}

func (e SlotError) Error() string {
	return fmt.Sprintf("payload: slot %q: %v", e.Slot, e.Err)
}

func (e SlotError) Unwrap() error {
	return e.Err
}
