// Package store defines the carrier registry contract. Implementations live
// in subpackages.
package store

import (
	"context"
	"errors"

	"github.com/danmuck/savestate/internal/avatar"
)

var ErrNotFound = errors.New("store: carrier not found")

// Registry persists carrier definitions by name.
type Registry interface {
	SaveDefinition(ctx context.Context, d avatar.Definition) error
	GetDefinition(ctx context.Context, name string) (avatar.Definition, error)
	ListDefinitions(ctx context.Context) ([]avatar.Definition, error)
	DeleteDefinition(ctx context.Context, name string) error
}
