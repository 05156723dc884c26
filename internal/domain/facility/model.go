package facility

import (
	"time"

	"github.com/google/uuid"
)

// Facility levels, smallest unit first.
const (
	LevelClinic       = "1"
	LevelHealthCenter = "2"
	LevelDistrict     = "3"
)

var levelLabels = map[string]string{
	LevelClinic:       "Clinic/Health Center Satelite",
	LevelHealthCenter: "Health Center",
	LevelDistrict:     "District Health",
}

// LevelLabel renders a facility level code to its human label.
func LevelLabel(code string) string {
	if label, ok := levelLabels[code]; ok {
		return label
	}
	return code
}

// ValidLevel reports whether code is a known facility level.
func ValidLevel(code string) bool {
	_, ok := levelLabels[code]
	return ok
}

// HealthFacility is a node in the referral hierarchy. LinkedFacilityID points
// at the facility's default upstream referral target; following the chain must
// never reach the facility itself again.
type HealthFacility struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	Name             string     `db:"name" json:"name"`
	Code             string     `db:"code" json:"code"`
	IsActive         bool       `db:"is_active" json:"is_active"`
	FacilityLevel    string     `db:"facility_level" json:"facility_level"`
	LinkedFacilityID *uuid.UUID `db:"linked_facility_id" json:"linked_facility_id,omitempty"`
	SubDistrictID    *uuid.UUID `db:"sub_district_id" json:"sub_district_id,omitempty"`
	Address          *string    `db:"address" json:"address,omitempty"`
	Latitude         float64    `db:"latitude" json:"latitude"`
	Longitude        float64    `db:"longitude" json:"longitude"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	ModifiedAt       time.Time  `db:"modified_at" json:"modified_at"`
}
