package facility

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("health facility not found")

type Repository interface {
	Create(ctx context.Context, f *HealthFacility) error
	Update(ctx context.Context, f *HealthFacility) error
	GetByID(ctx context.Context, id uuid.UUID) (*HealthFacility, error)
	GetByCode(ctx context.Context, code string) (*HealthFacility, error)
	List(ctx context.Context, limit, offset int) ([]*HealthFacility, error)
	ListBySubDistrict(ctx context.Context, subDistrictID uuid.UUID) ([]*HealthFacility, error)
	// ListReportingTo returns the active facilities whose linked facility is id.
	ListReportingTo(ctx context.Context, id uuid.UUID) ([]*HealthFacility, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}
