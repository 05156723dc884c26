package masterdata

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a region row does not exist.
var ErrNotFound = errors.New("region not found")

type ProvinceRepository interface {
	Create(ctx context.Context, p *Province) error
	GetByID(ctx context.Context, id uuid.UUID) (*Province, error)
	List(ctx context.Context, limit, offset int) ([]*Province, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type CityRepository interface {
	Create(ctx context.Context, c *City) error
	GetByID(ctx context.Context, id uuid.UUID) (*City, error)
	// List filters by province when provinceID is non-nil.
	List(ctx context.Context, provinceID *uuid.UUID, limit, offset int) ([]*City, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type DistrictRepository interface {
	Create(ctx context.Context, d *District) error
	GetByID(ctx context.Context, id uuid.UUID) (*District, error)
	List(ctx context.Context, cityID *uuid.UUID, limit, offset int) ([]*District, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type SubDistrictRepository interface {
	Create(ctx context.Context, sd *SubDistrict) error
	GetByID(ctx context.Context, id uuid.UUID) (*SubDistrict, error)
	List(ctx context.Context, districtID *uuid.UUID, limit, offset int) ([]*SubDistrict, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}
