package facility

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrLinkCycle is returned when setting linked_facility would create a loop
// in the referral chain, including a self-reference.
var ErrLinkCycle = errors.New("linked facility would create a referral cycle")

const (
	maxNameLen = 50
	maxCodeLen = 15
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) validate(ctx context.Context, f *HealthFacility) error {
	if f.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(f.Name) > maxNameLen {
		return fmt.Errorf("name exceeds %d characters", maxNameLen)
	}
	if f.Code == "" {
		return fmt.Errorf("code is required")
	}
	if len(f.Code) > maxCodeLen {
		return fmt.Errorf("code exceeds %d characters", maxCodeLen)
	}
	if f.FacilityLevel == "" {
		f.FacilityLevel = LevelClinic
	}
	if !ValidLevel(f.FacilityLevel) {
		return fmt.Errorf("invalid facility level: %s", f.FacilityLevel)
	}
	return s.checkLinkCycle(ctx, f)
}

// checkLinkCycle walks the linked chain from the proposed upstream. The walk
// is bounded so a pre-existing corrupt loop cannot hang the request.
func (s *Service) checkLinkCycle(ctx context.Context, f *HealthFacility) error {
	if f.LinkedFacilityID == nil {
		return nil
	}
	if *f.LinkedFacilityID == f.ID {
		return ErrLinkCycle
	}
	seen := map[uuid.UUID]bool{f.ID: true}
	next := *f.LinkedFacilityID
	for i := 0; i < 64; i++ {
		if seen[next] {
			return ErrLinkCycle
		}
		seen[next] = true
		upstream, err := s.repo.GetByID(ctx, next)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("linked facility %s: %w", next, ErrNotFound)
			}
			return err
		}
		if upstream.LinkedFacilityID == nil {
			return nil
		}
		next = *upstream.LinkedFacilityID
	}
	return ErrLinkCycle
}

func (s *Service) Create(ctx context.Context, f *HealthFacility) error {
	if err := s.validate(ctx, f); err != nil {
		return err
	}
	return s.repo.Create(ctx, f)
}

func (s *Service) Update(ctx context.Context, f *HealthFacility) error {
	if err := s.validate(ctx, f); err != nil {
		return err
	}
	return s.repo.Update(ctx, f)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*HealthFacility, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByCode(ctx context.Context, code string) (*HealthFacility, error) {
	return s.repo.GetByCode(ctx, code)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*HealthFacility, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListBySubDistrict(ctx context.Context, subDistrictID uuid.UUID) ([]*HealthFacility, error) {
	return s.repo.ListBySubDistrict(ctx, subDistrictID)
}

func (s *Service) ListReportingTo(ctx context.Context, id uuid.UUID) ([]*HealthFacility, error) {
	return s.repo.ListReportingTo(ctx, id)
}

// Deactivate soft-deletes a facility. The row stays queryable and routing
// records pointing at it survive.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.repo.Deactivate(ctx, id)
}
