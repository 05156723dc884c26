package notify

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rullypratama/sms-backend/internal/platform/db"
)

// DeliveryRepository records which (dedup_key, recipient) pairs have already
// been delivered, making redelivered queue messages harmless.
type DeliveryRepository interface {
	// MarkDelivered claims the pair. It returns false when an earlier
	// delivery already committed the same pair.
	MarkDelivered(ctx context.Context, dedupKey, recipient string) (bool, error)
}

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type deliveryRepoPG struct{ pool *pgxpool.Pool }

func NewDeliveryRepoPG(pool *pgxpool.Pool) DeliveryRepository {
	return &deliveryRepoPG{pool: pool}
}

func (r *deliveryRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *deliveryRepoPG) MarkDelivered(ctx context.Context, dedupKey, recipient string) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO notification_delivery (dedup_key, recipient, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (dedup_key, recipient) DO NOTHING`,
		dedupKey, recipient)
	if err != nil {
		return false, fmt.Errorf("mark delivered: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
