package account

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("user not found")

type Repository interface {
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByPhone(ctx context.Context, phone string) (*User, error)
	// ListByFacilityCode returns users whose facility carries the given code;
	// the queue worker uses it to resolve notification recipients.
	ListByFacilityCode(ctx context.Context, code string) ([]*User, error)
}
