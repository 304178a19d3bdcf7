package layout

import (
	"errors"
	"fmt"
)

var ErrUnsupportedVariableKind = errors.New("layout: unsupported variable kind")

// KindError reports one variable skipped during planning.
type KindError struct {
	Index int
	Name  string
	Kind  Kind
}

func (e KindError) Error() string {
	return fmt.Sprintf("layout: variable %d %q: unsupported kind %d", e.Index, e.Name, int(e.Kind))
}

func (e KindError) Unwrap() error {
	return ErrUnsupportedVariableKind
}
