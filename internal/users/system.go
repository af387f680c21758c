package users

import (
	"context"

	"github.com/google/uuid"
)

// System defines user lookup and registration.
type System interface {
	Find(ctx context.Context, id uuid.UUID) (*User, error)
	Create(ctx context.Context, cmd CreateCommand) (*User, error)
}
