package page

import (
	"errors"
	"fmt"

	"github.com/danmuck/savestate/internal/layout"
)

var (
	ErrInvalidCapacity  = errors.New("page: invalid capacity")
	ErrCapacityOverflow = errors.New("page: capacity overflow")
)

// Overflow reports one slot the packer dropped. Frame is the index of the
// frame the slot did not fit into.
type Overflow struct {
	Slot   layout.VariableSlot
	Frame  int
	Reason string
}

func (o Overflow) Error() string {
	return fmt.Sprintf("page: slot %q (%s, %d bits) dropped at frame %d: %s", o.Slot.Name, o.Slot.Kind, o.Slot.BitWidth, o.Frame, o.Reason)
}

func (o Overflow) Unwrap() error {
	return ErrCapacityOverflow
}
