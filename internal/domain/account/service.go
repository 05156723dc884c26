package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is the uniform login failure: it never reveals
// whether the email or phone existed.
var ErrInvalidCredentials = errors.New("invalid credentials")

const maxPhoneLen = 16

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// UpsertInput carries the provisioning fields for Upsert.
type UpsertInput struct {
	Email            string
	Password         string
	PhoneNumber      string
	FirstName        *string
	LastName         *string
	Properties       map[string]any
	HealthFacilityID *uuid.UUID
}

// Upsert provisions a user by email: when an account with the (normalized)
// email already exists its fields are updated, otherwise a new account is
// created. Duplicate accounts per email cannot arise through this path.
func (s *Service) Upsert(ctx context.Context, in UpsertInput) (*User, error) {
	email := NormalizeEmail(in.Email)
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if in.PhoneNumber == "" {
		return nil, fmt.Errorf("phone_number is required")
	}
	if len(in.PhoneNumber) > maxPhoneLen {
		return nil, fmt.Errorf("phone_number exceeds %d characters", maxPhoneLen)
	}
	if in.Password == "" {
		return nil, fmt.Errorf("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		existing.PhoneNumber = in.PhoneNumber
		existing.FirstName = in.FirstName
		existing.LastName = in.LastName
		existing.PasswordHash = string(hash)
		if in.Properties != nil {
			existing.Properties = in.Properties
		}
		existing.HealthFacilityID = in.HealthFacilityID
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	case errors.Is(err, ErrNotFound):
		u := &User{
			Email:            email,
			PhoneNumber:      in.PhoneNumber,
			FirstName:        in.FirstName,
			LastName:         in.LastName,
			PasswordHash:     string(hash),
			Properties:       in.Properties,
			HealthFacilityID: in.HealthFacilityID,
		}
		if err := s.repo.Create(ctx, u); err != nil {
			return nil, err
		}
		return u, nil
	default:
		return nil, err
	}
}

// Authenticate checks an email+password or phone+password pair. Phone login
// resolves the account's email first, then validates against that account.
func (s *Service) Authenticate(ctx context.Context, email, phone, password string) (*User, error) {
	var (
		u   *User
		err error
	)
	switch {
	case email != "":
		u, err = s.repo.GetByEmail(ctx, NormalizeEmail(email))
	case phone != "":
		u, err = s.repo.GetByPhone(ctx, phone)
	default:
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByFacilityCode(ctx context.Context, code string) ([]*User, error) {
	return s.repo.ListByFacilityCode(ctx, code)
}
