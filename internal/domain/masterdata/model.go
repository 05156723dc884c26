package masterdata

import (
	"time"

	"github.com/google/uuid"
)

// Province is the top level of the administrative region tree.
type Province struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      *string   `db:"code" json:"code,omitempty"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type City struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	Code       *string    `db:"code" json:"code,omitempty"`
	IsActive   bool       `db:"is_active" json:"is_active"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	ProvinceID *uuid.UUID `db:"province_id" json:"province_id,omitempty"`
}

type District struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Code      *string    `db:"code" json:"code,omitempty"`
	IsActive  bool       `db:"is_active" json:"is_active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	CityID    *uuid.UUID `db:"city_id" json:"city_id,omitempty"`
}

type SubDistrict struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	Code       *string    `db:"code" json:"code,omitempty"`
	IsActive   bool       `db:"is_active" json:"is_active"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	DistrictID *uuid.UUID `db:"district_id" json:"district_id,omitempty"`
}
