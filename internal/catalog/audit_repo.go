package catalog

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AuditRepo struct{ DB *pgxpool.Pool }

func (r *AuditRepo) Append(ctx context.Context, rec AuditRecord) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO catalog_events(
			event_id, event_type, event_version, producer, correlation_id, trace_id,
			topic, kafka_partition, kafka_offset, payload, occurred_at)
		VALUES ($1::text::uuid, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9, $10::jsonb, $11)
		ON CONFLICT (event_id) DO NOTHING
	`, rec.EventID, rec.EventType, rec.EventVersion, rec.Producer, rec.CorrelationID, rec.TraceID,
		rec.Topic, rec.Partition, rec.Offset, string(rec.Payload), rec.OccurredAt)
	return err
}
