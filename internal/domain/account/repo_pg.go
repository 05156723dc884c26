package account

import (
	"context"
	"encoding/json"
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

const userCols = `id, email, phone_number, first_name, last_name, password_hash,
	properties, health_facility_id, created_at, modified_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var props []byte
	err := row.Scan(&u.ID, &u.Email, &u.PhoneNumber, &u.FirstName, &u.LastName,
		&u.PasswordHash, &props, &u.HealthFacilityID, &u.CreatedAt, &u.ModifiedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(props) > 0 {
		if err := json.Unmarshal(props, &u.Properties); err != nil {
			return nil, err
		}
	}
	return &u, nil
}

func marshalProps(u *User) ([]byte, error) {
	if u.Properties == nil {
		return nil, nil
	}
	return json.Marshal(u.Properties)
}

func (r *repoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	props, err := marshalProps(u)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO user_account (id, email, phone_number, first_name, last_name,
			password_hash, properties, health_facility_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		u.ID, u.Email, u.PhoneNumber, u.FirstName, u.LastName,
		u.PasswordHash, props, u.HealthFacilityID)
	return err
}

func (r *repoPG) Update(ctx context.Context, u *User) error {
	props, err := marshalProps(u)
	if err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE user_account SET email=$2, phone_number=$3, first_name=$4,
			last_name=$5, password_hash=$6, properties=$7,
			health_facility_id=$8, modified_at=NOW()
		WHERE id = $1`,
		u.ID, u.Email, u.PhoneNumber, u.FirstName, u.LastName,
		u.PasswordHash, props, u.HealthFacilityID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx,
		`SELECT `+userCols+` FROM user_account WHERE id = $1`, id))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx,
		`SELECT `+userCols+` FROM user_account WHERE lower(email) = lower($1)`, email))
}

func (r *repoPG) GetByPhone(ctx context.Context, phone string) (*User, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx,
		`SELECT `+userCols+` FROM user_account WHERE phone_number = $1`, phone))
}

func (r *repoPG) ListByFacilityCode(ctx context.Context, code string) ([]*User, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+prefixCols("u")+`
		FROM user_account u
		JOIN health_facility f ON f.id = u.health_facility_id
		WHERE f.code = $1`, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func prefixCols(alias string) string {
	return alias + `.id, ` + alias + `.email, ` + alias + `.phone_number, ` +
		alias + `.first_name, ` + alias + `.last_name, ` + alias + `.password_hash, ` +
		alias + `.properties, ` + alias + `.health_facility_id, ` +
		alias + `.created_at, ` + alias + `.modified_at`
}
