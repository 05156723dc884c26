package masterdata

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

const maxNameLen = 50

type Service struct {
	provinces    ProvinceRepository
	cities       CityRepository
	districts    DistrictRepository
	subDistricts SubDistrictRepository
}

func NewService(
	provinces ProvinceRepository,
	cities CityRepository,
	districts DistrictRepository,
	subDistricts SubDistrictRepository,
) *Service {
	return &Service{
		provinces:    provinces,
		cities:       cities,
		districts:    districts,
		subDistricts: subDistricts,
	}
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > maxNameLen {
		return fmt.Errorf("name exceeds %d characters", maxNameLen)
	}
	return nil
}

func (s *Service) CreateProvince(ctx context.Context, p *Province) error {
	if err := validateName(p.Name); err != nil {
		return err
	}
	return s.provinces.Create(ctx, p)
}

func (s *Service) GetProvince(ctx context.Context, id uuid.UUID) (*Province, error) {
	return s.provinces.GetByID(ctx, id)
}

func (s *Service) ListProvinces(ctx context.Context, limit, offset int) ([]*Province, error) {
	return s.provinces.List(ctx, limit, offset)
}

func (s *Service) DeactivateProvince(ctx context.Context, id uuid.UUID) error {
	return s.provinces.Deactivate(ctx, id)
}

func (s *Service) CreateCity(ctx context.Context, c *City) error {
	if err := validateName(c.Name); err != nil {
		return err
	}
	if c.ProvinceID != nil {
		if _, err := s.provinces.GetByID(ctx, *c.ProvinceID); err != nil {
			return fmt.Errorf("province %s: %w", c.ProvinceID, err)
		}
	}
	return s.cities.Create(ctx, c)
}

func (s *Service) GetCity(ctx context.Context, id uuid.UUID) (*City, error) {
	return s.cities.GetByID(ctx, id)
}

func (s *Service) ListCities(ctx context.Context, provinceID *uuid.UUID, limit, offset int) ([]*City, error) {
	return s.cities.List(ctx, provinceID, limit, offset)
}

func (s *Service) DeactivateCity(ctx context.Context, id uuid.UUID) error {
	return s.cities.Deactivate(ctx, id)
}

func (s *Service) CreateDistrict(ctx context.Context, d *District) error {
	if err := validateName(d.Name); err != nil {
		return err
	}
	if d.CityID != nil {
		if _, err := s.cities.GetByID(ctx, *d.CityID); err != nil {
			return fmt.Errorf("city %s: %w", d.CityID, err)
		}
	}
	return s.districts.Create(ctx, d)
}

func (s *Service) GetDistrict(ctx context.Context, id uuid.UUID) (*District, error) {
	return s.districts.GetByID(ctx, id)
}

func (s *Service) ListDistricts(ctx context.Context, cityID *uuid.UUID, limit, offset int) ([]*District, error) {
	return s.districts.List(ctx, cityID, limit, offset)
}

func (s *Service) DeactivateDistrict(ctx context.Context, id uuid.UUID) error {
	return s.districts.Deactivate(ctx, id)
}

func (s *Service) CreateSubDistrict(ctx context.Context, sd *SubDistrict) error {
	if err := validateName(sd.Name); err != nil {
		return err
	}
	if sd.DistrictID != nil {
		if _, err := s.districts.GetByID(ctx, *sd.DistrictID); err != nil {
			return fmt.Errorf("district %s: %w", sd.DistrictID, err)
		}
	}
	return s.subDistricts.Create(ctx, sd)
}

func (s *Service) GetSubDistrict(ctx context.Context, id uuid.UUID) (*SubDistrict, error) {
	return s.subDistricts.GetByID(ctx, id)
}

func (s *Service) ListSubDistricts(ctx context.Context, districtID *uuid.UUID, limit, offset int) ([]*SubDistrict, error) {
	return s.subDistricts.List(ctx, districtID, limit, offset)
}

func (s *Service) DeactivateSubDistrict(ctx context.Context, id uuid.UUID) error {
	return s.subDistricts.Deactivate(ctx, id)
}
