package caserecord

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

const uniqueViolation = "23505"

// =========== Case Repository ===========

type caseRepoPG struct{ pool *pgxpool.Pool }

func NewCaseRepoPG(pool *pgxpool.Pool) CaseRepository {
	return &caseRepoPG{pool: pool}
}

func (r *caseRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const caseCols = `id, name, is_active, gender, age, patient_contact, disease_type,
	case_report_type, classification_case, address, latitude, longitude,
	is_pregnant, user_id, province_id, city_id, district_id, sub_district_id,
	created_at, modified_at`

func scanCase(row pgx.Row) (*CaseInformation, error) {
	var ci CaseInformation
	err := row.Scan(&ci.ID, &ci.Name, &ci.IsActive, &ci.Gender, &ci.Age,
		&ci.PatientContact, &ci.DiseaseType, &ci.CaseReportType,
		&ci.ClassificationCase, &ci.Address, &ci.Latitude, &ci.Longitude,
		&ci.IsPregnant, &ci.UserID, &ci.ProvinceID, &ci.CityID, &ci.DistrictID,
		&ci.SubDistrictID, &ci.CreatedAt, &ci.ModifiedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ci, nil
}

func (r *caseRepoPG) Create(ctx context.Context, ci *CaseInformation) error {
	ci.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO case_information (id, name, is_active, gender, age,
			patient_contact, disease_type, case_report_type, classification_case,
			address, latitude, longitude, is_pregnant, user_id,
			province_id, city_id, district_id, sub_district_id)
		VALUES ($1,$2,TRUE,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		ci.ID, ci.Name, ci.Gender, ci.Age, ci.PatientContact, ci.DiseaseType,
		ci.CaseReportType, ci.ClassificationCase, ci.Address, ci.Latitude,
		ci.Longitude, ci.IsPregnant, ci.UserID,
		ci.ProvinceID, ci.CityID, ci.DistrictID, ci.SubDistrictID)
	return err
}

func (r *caseRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*CaseInformation, error) {
	return scanCase(r.conn(ctx).QueryRow(ctx,
		`SELECT `+caseCols+` FROM case_information WHERE id = $1`, id))
}

func (r *caseRepoPG) Replace(ctx context.Context, ci *CaseInformation) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE case_information SET name=$2, gender=$3, age=$4, patient_contact=$5,
			disease_type=$6, case_report_type=$7, classification_case=$8,
			address=$9, latitude=$10, longitude=$11, is_pregnant=$12,
			modified_at=NOW()
		WHERE id = $1`,
		ci.ID, ci.Name, ci.Gender, ci.Age, ci.PatientContact, ci.DiseaseType,
		ci.CaseReportType, ci.ClassificationCase, ci.Address, ci.Latitude,
		ci.Longitude, ci.IsPregnant)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *caseRepoPG) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE case_information SET is_active = FALSE, modified_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// =========== Route Repository ===========

type routeRepoPG struct{ pool *pgxpool.Pool }

func NewRouteRepoPG(pool *pgxpool.Pool) RouteRepository {
	return &routeRepoPG{pool: pool}
}

func (r *routeRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *routeRepoPG) Create(ctx context.Context, rt *CaseRoute) error {
	rt.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO case_route (id, case_id, origin_facility_id,
			destination_facility_id, message_type)
		VALUES ($1,$2,$3,$4,$5)`,
		rt.ID, rt.CaseID, rt.OriginFacilityID, rt.DestinationFacilityID, rt.MessageType)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateRoute
	}
	return err
}

// viewSelect joins each route to its case and both facility endpoints.
// Endpoint names degrade to '' when the facility row was hard-removed.
const viewSelect = `
	SELECT ci.id, ci.name, COALESCE(ci.patient_contact, ''),
		ci.disease_type, ci.case_report_type, ci.classification_case,
		COALESCE(fo.name, ''), COALESCE(fd.name, ''), r.created_at
	FROM case_route r
	JOIN case_information ci ON ci.id = r.case_id
	LEFT JOIN health_facility fo ON fo.id = r.origin_facility_id
	LEFT JOIN health_facility fd ON fd.id = r.destination_facility_id`

func (r *routeRepoPG) scanViews(rows pgx.Rows) ([]*RouteView, error) {
	defer rows.Close()
	var views []*RouteView
	for rows.Next() {
		var v RouteView
		var disease, caseType, classification string
		err := rows.Scan(&v.CaseID, &v.Name, &v.PatientContact,
			&disease, &caseType, &classification,
			&v.HealthFacilityFrom, &v.HealthFacilityTo, &v.Created)
		if err != nil {
			return nil, err
		}
		v.DiseaseType = DiseaseLabel(disease)
		v.CaseReportType = CaseTypeLabel(caseType)
		v.ClassificationCase = ClassificationLabel(classification)
		views = append(views, &v)
	}
	return views, rows.Err()
}

func (r *routeRepoPG) ListInbound(ctx context.Context, viewerIDs []uuid.UUID, limit int) ([]*RouteView, error) {
	rows, err := r.conn(ctx).Query(ctx, viewSelect+`
		WHERE r.destination_facility_id = ANY($1)
		ORDER BY r.created_at DESC LIMIT $2`, viewerIDs, limit)
	if err != nil {
		return nil, err
	}
	return r.scanViews(rows)
}

func (r *routeRepoPG) ListOutbound(ctx context.Context, viewerIDs []uuid.UUID, limit int) ([]*RouteView, error) {
	rows, err := r.conn(ctx).Query(ctx, viewSelect+`
		WHERE r.origin_facility_id = ANY($1)
		ORDER BY r.created_at DESC LIMIT $2`, viewerIDs, limit)
	if err != nil {
		return nil, err
	}
	return r.scanViews(rows)
}

func (r *routeRepoPG) ListAny(ctx context.Context, viewerIDs []uuid.UUID, limit int) ([]*RouteView, error) {
	// One row per case: DISTINCT ON keeps the most recent edge for a case
	// that fanned out to several destinations.
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT * FROM (
			SELECT DISTINCT ON (ci.id)
				ci.id, ci.name, COALESCE(ci.patient_contact, ''),
				ci.disease_type, ci.case_report_type, ci.classification_case,
				COALESCE(fo.name, ''), COALESCE(fd.name, ''), r.created_at
			FROM case_route r
			JOIN case_information ci ON ci.id = r.case_id
			LEFT JOIN health_facility fo ON fo.id = r.origin_facility_id
			LEFT JOIN health_facility fd ON fd.id = r.destination_facility_id
			WHERE r.origin_facility_id = ANY($1) OR r.destination_facility_id = ANY($1)
			ORDER BY ci.id, r.created_at DESC
		) sub
		ORDER BY sub.created_at DESC LIMIT $2`, viewerIDs, limit)
	if err != nil {
		return nil, err
	}
	return r.scanViews(rows)
}
