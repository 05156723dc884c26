package facility

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

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const facilityCols = `id, name, code, is_active, facility_level, linked_facility_id,
	sub_district_id, address, latitude, longitude, created_at, modified_at`

func scanFacility(row pgx.Row) (*HealthFacility, error) {
	var f HealthFacility
	err := row.Scan(&f.ID, &f.Name, &f.Code, &f.IsActive, &f.FacilityLevel,
		&f.LinkedFacilityID, &f.SubDistrictID, &f.Address, &f.Latitude, &f.Longitude,
		&f.CreatedAt, &f.ModifiedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *repoPG) Create(ctx context.Context, f *HealthFacility) error {
	f.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO health_facility (id, name, code, is_active, facility_level,
			linked_facility_id, sub_district_id, address, latitude, longitude)
		VALUES ($1,$2,$3,TRUE,$4,$5,$6,$7,$8,$9)`,
		f.ID, f.Name, f.Code, f.FacilityLevel, f.LinkedFacilityID,
		f.SubDistrictID, f.Address, f.Latitude, f.Longitude)
	return err
}

func (r *repoPG) Update(ctx context.Context, f *HealthFacility) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE health_facility SET name=$2, code=$3, facility_level=$4,
			linked_facility_id=$5, sub_district_id=$6, address=$7,
			latitude=$8, longitude=$9, modified_at=NOW()
		WHERE id = $1`,
		f.ID, f.Name, f.Code, f.FacilityLevel, f.LinkedFacilityID,
		f.SubDistrictID, f.Address, f.Latitude, f.Longitude)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*HealthFacility, error) {
	return scanFacility(r.conn(ctx).QueryRow(ctx,
		`SELECT `+facilityCols+` FROM health_facility WHERE id = $1`, id))
}

func (r *repoPG) GetByCode(ctx context.Context, code string) (*HealthFacility, error) {
	return scanFacility(r.conn(ctx).QueryRow(ctx,
		`SELECT `+facilityCols+` FROM health_facility WHERE code = $1`, code))
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*HealthFacility, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+facilityCols+` FROM health_facility
		WHERE is_active ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *repoPG) ListBySubDistrict(ctx context.Context, subDistrictID uuid.UUID) ([]*HealthFacility, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+facilityCols+` FROM health_facility
		WHERE is_active AND sub_district_id = $1 ORDER BY name`, subDistrictID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *repoPG) ListReportingTo(ctx context.Context, id uuid.UUID) ([]*HealthFacility, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+facilityCols+` FROM health_facility
		WHERE is_active AND linked_facility_id = $1 ORDER BY name`, id)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func collect(rows pgx.Rows) ([]*HealthFacility, error) {
	defer rows.Close()
	var items []*HealthFacility
	for rows.Next() {
		f, err := scanFacility(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	return items, rows.Err()
}

func (r *repoPG) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE health_facility SET is_active = FALSE, modified_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
