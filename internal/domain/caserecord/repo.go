package caserecord

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("case not found")

	// ErrDuplicateRoute means the storage layer rejected a routing edge that
	// already exists; the unique constraint is the source of truth under
	// concurrent submissions.
	ErrDuplicateRoute = errors.New("duplicate routing record")
)

type CaseRepository interface {
	Create(ctx context.Context, ci *CaseInformation) error
	GetByID(ctx context.Context, id uuid.UUID) (*CaseInformation, error)
	// Replace overwrites the mutable report fields of an existing case.
	Replace(ctx context.Context, ci *CaseInformation) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type RouteRepository interface {
	Create(ctx context.Context, rt *CaseRoute) error
	// ListInbound returns denormalized rows whose destination is one of viewerIDs.
	ListInbound(ctx context.Context, viewerIDs []uuid.UUID, limit int) ([]*RouteView, error)
	// ListOutbound returns denormalized rows whose origin is one of viewerIDs.
	ListOutbound(ctx context.Context, viewerIDs []uuid.UUID, limit int) ([]*RouteView, error)
	// ListAny returns rows touching viewerIDs on either side, one row per
	// case, keeping the most recently created edge.
	ListAny(ctx context.Context, viewerIDs []uuid.UUID, limit int) ([]*RouteView, error)
}
