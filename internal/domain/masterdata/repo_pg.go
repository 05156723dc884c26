package masterdata

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rullypratama/sms-backend/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// =========== Province ===========

type provinceRepoPG struct{ pool *pgxpool.Pool }

func NewProvinceRepoPG(pool *pgxpool.Pool) ProvinceRepository {
	return &provinceRepoPG{pool: pool}
}

func (r *provinceRepoPG) Create(ctx context.Context, p *Province) error {
	p.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO master_province (id, name, code, is_active)
		VALUES ($1,$2,$3,TRUE)`,
		p.ID, p.Name, p.Code)
	return err
}

func (r *provinceRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Province, error) {
	var p Province
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, name, code, is_active, created_at
		FROM master_province WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Code, &p.IsActive, &p.CreatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &p, nil
}

func (r *provinceRepoPG) List(ctx context.Context, limit, offset int) ([]*Province, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, name, code, is_active, created_at
		FROM master_province WHERE is_active ORDER BY name LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Province
	for rows.Next() {
		var p Province
		if err := rows.Scan(&p.ID, &p.Name, &p.Code, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &p)
	}
	return items, rows.Err()
}

func (r *provinceRepoPG) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE master_province SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// =========== City ===========

type cityRepoPG struct{ pool *pgxpool.Pool }

func NewCityRepoPG(pool *pgxpool.Pool) CityRepository {
	return &cityRepoPG{pool: pool}
}

func (r *cityRepoPG) Create(ctx context.Context, c *City) error {
	c.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO master_city (id, name, code, is_active, province_id)
		VALUES ($1,$2,$3,TRUE,$4)`,
		c.ID, c.Name, c.Code, c.ProvinceID)
	return err
}

func (r *cityRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*City, error) {
	var c City
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, name, code, is_active, created_at, province_id
		FROM master_city WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Code, &c.IsActive, &c.CreatedAt, &c.ProvinceID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &c, nil
}

func (r *cityRepoPG) List(ctx context.Context, provinceID *uuid.UUID, limit, offset int) ([]*City, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, name, code, is_active, created_at, province_id
		FROM master_city
		WHERE is_active AND ($1::uuid IS NULL OR province_id = $1)
		ORDER BY name LIMIT $2 OFFSET $3`,
		provinceID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*City
	for rows.Next() {
		var c City
		if err := rows.Scan(&c.ID, &c.Name, &c.Code, &c.IsActive, &c.CreatedAt, &c.ProvinceID); err != nil {
			return nil, err
		}
		items = append(items, &c)
	}
	return items, rows.Err()
}

func (r *cityRepoPG) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE master_city SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// =========== District ===========

type districtRepoPG struct{ pool *pgxpool.Pool }

func NewDistrictRepoPG(pool *pgxpool.Pool) DistrictRepository {
	return &districtRepoPG{pool: pool}
}

func (r *districtRepoPG) Create(ctx context.Context, d *District) error {
	d.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO master_district (id, name, code, is_active, city_id)
		VALUES ($1,$2,$3,TRUE,$4)`,
		d.ID, d.Name, d.Code, d.CityID)
	return err
}

func (r *districtRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*District, error) {
	var d District
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, name, code, is_active, created_at, city_id
		FROM master_district WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.Code, &d.IsActive, &d.CreatedAt, &d.CityID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &d, nil
}

func (r *districtRepoPG) List(ctx context.Context, cityID *uuid.UUID, limit, offset int) ([]*District, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, name, code, is_active, created_at, city_id
		FROM master_district
		WHERE is_active AND ($1::uuid IS NULL OR city_id = $1)
		ORDER BY name LIMIT $2 OFFSET $3`,
		cityID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*District
	for rows.Next() {
		var d District
		if err := rows.Scan(&d.ID, &d.Name, &d.Code, &d.IsActive, &d.CreatedAt, &d.CityID); err != nil {
			return nil, err
		}
		items = append(items, &d)
	}
	return items, rows.Err()
}

func (r *districtRepoPG) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE master_district SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// =========== SubDistrict ===========

type subDistrictRepoPG struct{ pool *pgxpool.Pool }

func NewSubDistrictRepoPG(pool *pgxpool.Pool) SubDistrictRepository {
	return &subDistrictRepoPG{pool: pool}
}

func (r *subDistrictRepoPG) Create(ctx context.Context, sd *SubDistrict) error {
	sd.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO master_sub_district (id, name, code, is_active, district_id)
		VALUES ($1,$2,$3,TRUE,$4)`,
		sd.ID, sd.Name, sd.Code, sd.DistrictID)
	return err
}

func (r *subDistrictRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*SubDistrict, error) {
	var sd SubDistrict
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, name, code, is_active, created_at, district_id
		FROM master_sub_district WHERE id = $1`, id).
		Scan(&sd.ID, &sd.Name, &sd.Code, &sd.IsActive, &sd.CreatedAt, &sd.DistrictID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &sd, nil
}

func (r *subDistrictRepoPG) List(ctx context.Context, districtID *uuid.UUID, limit, offset int) ([]*SubDistrict, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, name, code, is_active, created_at, district_id
		FROM master_sub_district
		WHERE is_active AND ($1::uuid IS NULL OR district_id = $1)
		ORDER BY name LIMIT $2 OFFSET $3`,
		districtID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*SubDistrict
	for rows.Next() {
		var sd SubDistrict
		if err := rows.Scan(&sd.ID, &sd.Name, &sd.Code, &sd.IsActive, &sd.CreatedAt, &sd.DistrictID); err != nil {
			return nil, err
		}
		items = append(items, &sd)
	}
	return items, rows.Err()
}

func (r *subDistrictRepoPG) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE master_sub_district SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
