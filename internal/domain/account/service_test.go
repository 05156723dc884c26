package account

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	byID map[uuid.UUID]*User
}

func newMockRepo() *mockRepo {
	return &mockRepo{byID: make(map[uuid.UUID]*User)}
}

func (m *mockRepo) Create(_ context.Context, u *User) error {
	u.ID = uuid.New()
	m.byID[u.ID] = u
	return nil
}

func (m *mockRepo) Update(_ context.Context, u *User) error {
	if _, ok := m.byID[u.ID]; !ok {
		return ErrNotFound
	}
	m.byID[u.ID] = u
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) GetByPhone(_ context.Context, phone string) (*User, error) {
	for _, u := range m.byID {
		if u.PhoneNumber == phone {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) ListByFacilityCode(_ context.Context, code string) ([]*User, error) {
	return nil, nil
}

func TestUpsert_CreatesNewUser(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	u, err := svc.Upsert(context.Background(), UpsertInput{
		Email:       "Nelson@Garuda.com",
		Password:    "rahasia123",
		PhoneNumber: "081234567890",
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if u.Email != "nelson@garuda.com" {
		t.Errorf("email = %q, want normalized", u.Email)
	}
	if u.PasswordHash == "rahasia123" || u.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
	if len(repo.byID) != 1 {
		t.Fatalf("users = %d, want 1", len(repo.byID))
	}
}

func TestUpsert_UpdatesExistingByEmail(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	first, err := svc.Upsert(context.Background(), UpsertInput{
		Email: "nelson@garuda.com", Password: "rahasia123", PhoneNumber: "081",
	})
	if err != nil {
		t.Fatalf("first Upsert: %v", err)
	}

	facilityID := uuid.New()
	second, err := svc.Upsert(context.Background(), UpsertInput{
		Email:            "NELSON@garuda.com", // case differs, same account
		Password:         "baru456",
		PhoneNumber:      "082",
		HealthFacilityID: &facilityID,
	})
	if err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	if second.ID != first.ID {
		t.Error("re-provisioning the same email must not create a second account")
	}
	if len(repo.byID) != 1 {
		t.Fatalf("users = %d, want 1", len(repo.byID))
	}
	if second.PhoneNumber != "082" {
		t.Errorf("phone = %q, not updated", second.PhoneNumber)
	}
	if second.HealthFacilityID == nil || *second.HealthFacilityID != facilityID {
		t.Error("facility assignment not updated")
	}
}

func TestUpsert_Validation(t *testing.T) {
	svc := NewService(newMockRepo())
	tests := []struct {
		name string
		in   UpsertInput
	}{
		{"missing email", UpsertInput{Password: "x", PhoneNumber: "081"}},
		{"missing password", UpsertInput{Email: "a@b.com", PhoneNumber: "081"}},
		{"missing phone", UpsertInput{Email: "a@b.com", Password: "x"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Upsert(context.Background(), tc.in); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestAuthenticate_ByEmail(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	if _, err := svc.Upsert(context.Background(), UpsertInput{
		Email: "nelson@garuda.com", Password: "rahasia123", PhoneNumber: "081",
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	u, err := svc.Authenticate(context.Background(), "Nelson@Garuda.com", "", "rahasia123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if u.Email != "nelson@garuda.com" {
		t.Errorf("email = %q", u.Email)
	}
}

func TestAuthenticate_ByPhone(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	if _, err := svc.Upsert(context.Background(), UpsertInput{
		Email: "nelson@garuda.com", Password: "rahasia123", PhoneNumber: "081234567890",
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	u, err := svc.Authenticate(context.Background(), "", "081234567890", "rahasia123")
	if err != nil {
		t.Fatalf("Authenticate by phone: %v", err)
	}
	if u.Email != "nelson@garuda.com" {
		t.Errorf("phone login resolved wrong account: %q", u.Email)
	}
}

func TestAuthenticate_UniformFailure(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	if _, err := svc.Upsert(context.Background(), UpsertInput{
		Email: "nelson@garuda.com", Password: "rahasia123", PhoneNumber: "081",
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// Wrong password and unknown identity are indistinguishable.
	_, errWrongPw := svc.Authenticate(context.Background(), "nelson@garuda.com", "", "salah")
	_, errUnknown := svc.Authenticate(context.Background(), "ghost@garuda.com", "", "rahasia123")
	_, errNoID := svc.Authenticate(context.Background(), "", "", "rahasia123")

	for name, err := range map[string]error{
		"wrong password": errWrongPw,
		"unknown email":  errUnknown,
		"no identity":    errNoID,
	} {
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("%s: err = %v, want ErrInvalidCredentials", name, err)
		}
	}
}

func TestDisplayName(t *testing.T) {
	first, last := "Nelson", "Pratama"
	u := &User{Email: "nelson@garuda.com", FirstName: &first, LastName: &last}
	if got := u.DisplayName(); got != "Nelson Pratama" {
		t.Errorf("DisplayName = %q", got)
	}

	bare := &User{Email: "nelson@garuda.com"}
	if got := bare.DisplayName(); got != "nelson@garuda.com" {
		t.Errorf("DisplayName fallback = %q", got)
	}
}
