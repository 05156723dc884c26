package account

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is a health-worker account. Email is the login identity and is always
// stored lower-cased; PhoneNumber is an alternative login handle.
type User struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	Email            string          `db:"email" json:"email"`
	PhoneNumber      string          `db:"phone_number" json:"phone_number"`
	FirstName        *string         `db:"first_name" json:"first_name,omitempty"`
	LastName         *string         `db:"last_name" json:"last_name,omitempty"`
	PasswordHash     string          `db:"password_hash" json:"-"`
	Properties       map[string]any  `db:"properties" json:"properties,omitempty"`
	HealthFacilityID *uuid.UUID      `db:"health_facility_id" json:"health_facility_id,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	ModifiedAt       time.Time       `db:"modified_at" json:"modified_at"`
}

// DisplayName joins first and last name, falling back to the email.
func (u *User) DisplayName() string {
	var parts []string
	if u.FirstName != nil && *u.FirstName != "" {
		parts = append(parts, *u.FirstName)
	}
	if u.LastName != nil && *u.LastName != "" {
		parts = append(parts, *u.LastName)
	}
	if len(parts) == 0 {
		return u.Email
	}
	return strings.Join(parts, " ")
}

// NormalizeEmail lower-cases and trims a login email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
