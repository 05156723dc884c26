package masterdata

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type mockProvinceRepo struct {
	byID map[uuid.UUID]*Province
}

func (m *mockProvinceRepo) Create(_ context.Context, p *Province) error {
	p.ID = uuid.New()
	m.byID[p.ID] = p
	return nil
}

func (m *mockProvinceRepo) GetByID(_ context.Context, id uuid.UUID) (*Province, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockProvinceRepo) List(context.Context, int, int) ([]*Province, error) {
	var out []*Province
	for _, p := range m.byID {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProvinceRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	p, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	p.IsActive = false
	return nil
}

type mockCityRepo struct {
	byID map[uuid.UUID]*City
}

func (m *mockCityRepo) Create(_ context.Context, c *City) error {
	c.ID = uuid.New()
	m.byID[c.ID] = c
	return nil
}

func (m *mockCityRepo) GetByID(_ context.Context, id uuid.UUID) (*City, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (m *mockCityRepo) List(_ context.Context, provinceID *uuid.UUID, _, _ int) ([]*City, error) {
	var out []*City
	for _, c := range m.byID {
		if provinceID != nil && (c.ProvinceID == nil || *c.ProvinceID != *provinceID) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCityRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	c, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	c.IsActive = false
	return nil
}

type mockDistrictRepo struct {
	byID map[uuid.UUID]*District
}

func (m *mockDistrictRepo) Create(_ context.Context, d *District) error {
	d.ID = uuid.New()
	m.byID[d.ID] = d
	return nil
}

func (m *mockDistrictRepo) GetByID(_ context.Context, id uuid.UUID) (*District, error) {
	d, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *mockDistrictRepo) List(context.Context, *uuid.UUID, int, int) ([]*District, error) {
	return nil, nil
}

func (m *mockDistrictRepo) Deactivate(context.Context, uuid.UUID) error { return nil }

type mockSubDistrictRepo struct {
	byID map[uuid.UUID]*SubDistrict
}

func (m *mockSubDistrictRepo) Create(_ context.Context, sd *SubDistrict) error {
	sd.ID = uuid.New()
	m.byID[sd.ID] = sd
	return nil
}

func (m *mockSubDistrictRepo) GetByID(_ context.Context, id uuid.UUID) (*SubDistrict, error) {
	sd, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sd, nil
}

func (m *mockSubDistrictRepo) List(context.Context, *uuid.UUID, int, int) ([]*SubDistrict, error) {
	return nil, nil
}

func (m *mockSubDistrictRepo) Deactivate(context.Context, uuid.UUID) error { return nil }

func newTestService() *Service {
	return NewService(
		&mockProvinceRepo{byID: make(map[uuid.UUID]*Province)},
		&mockCityRepo{byID: make(map[uuid.UUID]*City)},
		&mockDistrictRepo{byID: make(map[uuid.UUID]*District)},
		&mockSubDistrictRepo{byID: make(map[uuid.UUID]*SubDistrict)},
	)
}

func TestCreateProvince(t *testing.T) {
	svc := newTestService()
	p := &Province{Name: "Nusa Tenggara Timur", IsActive: true}
	if err := svc.CreateProvince(context.Background(), p); err != nil {
		t.Fatalf("CreateProvince: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("id not assigned")
	}
}

func TestCreateProvince_NameValidation(t *testing.T) {
	svc := newTestService()
	if err := svc.CreateProvince(context.Background(), &Province{}); err == nil {
		t.Error("empty name must be rejected")
	}
	long := &Province{Name: string(make([]byte, 51))}
	if err := svc.CreateProvince(context.Background(), long); err == nil {
		t.Error("over-long name must be rejected")
	}
}

func TestCreateCity_RequiresExistingProvince(t *testing.T) {
	svc := newTestService()

	missing := uuid.New()
	err := svc.CreateCity(context.Background(), &City{Name: "Kupang", ProvinceID: &missing})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	p := &Province{Name: "Nusa Tenggara Timur", IsActive: true}
	if err := svc.CreateProvince(context.Background(), p); err != nil {
		t.Fatalf("CreateProvince: %v", err)
	}
	if err := svc.CreateCity(context.Background(), &City{Name: "Kupang", ProvinceID: &p.ID}); err != nil {
		t.Fatalf("CreateCity: %v", err)
	}
}

func TestCreateDistrict_RequiresExistingCity(t *testing.T) {
	svc := newTestService()
	missing := uuid.New()
	err := svc.CreateDistrict(context.Background(), &District{Name: "Kupang Tengah", CityID: &missing})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateSubDistrict_RequiresExistingDistrict(t *testing.T) {
	svc := newTestService()
	missing := uuid.New()
	err := svc.CreateSubDistrict(context.Background(), &SubDistrict{Name: "Oebobo", DistrictID: &missing})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListCities_ParentFilter(t *testing.T) {
	svc := newTestService()
	p1 := &Province{Name: "NTT", IsActive: true}
	p2 := &Province{Name: "NTB", IsActive: true}
	_ = svc.CreateProvince(context.Background(), p1)
	_ = svc.CreateProvince(context.Background(), p2)
	_ = svc.CreateCity(context.Background(), &City{Name: "Kupang", ProvinceID: &p1.ID})
	_ = svc.CreateCity(context.Background(), &City{Name: "Mataram", ProvinceID: &p2.ID})

	cities, err := svc.ListCities(context.Background(), &p1.ID, 100, 0)
	if err != nil {
		t.Fatalf("ListCities: %v", err)
	}
	if len(cities) != 1 || cities[0].Name != "Kupang" {
		t.Errorf("filtered cities = %+v", cities)
	}
}

func TestDeactivateProvince_NotListed(t *testing.T) {
	svc := newTestService()
	p := &Province{Name: "NTT", IsActive: true}
	_ = svc.CreateProvince(context.Background(), p)

	if err := svc.DeactivateProvince(context.Background(), p.ID); err != nil {
		t.Fatalf("DeactivateProvince: %v", err)
	}
	listed, _ := svc.ListProvinces(context.Background(), 100, 0)
	if len(listed) != 0 {
		t.Errorf("deactivated province still listed: %+v", listed)
	}
	// Row survives for existing references.
	if _, err := svc.GetProvince(context.Background(), p.ID); err != nil {
		t.Errorf("row must survive deactivation: %v", err)
	}
}
