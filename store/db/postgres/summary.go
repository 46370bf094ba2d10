package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/topicinsights/topicinsights/store"
)

func (d *DB) CreateSummary(ctx context.Context, create *store.Summary) (*store.Summary, error) {
	return d.createSummary(ctx, d.db, create)
}

// CreateSummaries inserts the whole batch in one transaction: either all
// rows commit or the batch surfaces as a single failure.
func (d *DB) CreateSummaries(ctx context.Context, creates []*store.Summary) ([]*store.Summary, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapError(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	for _, create := range creates {
		if _, err := d.createSummary(ctx, tx, create); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, mapError(err, "failed to commit summary batch")
	}
	return creates, nil
}

type execQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (d *DB) createSummary(ctx context.Context, q execQueryer, create *store.Summary) (*store.Summary, error) {
	metadata, err := marshalMetadata(create.Metadata)
	if err != nil {
		return nil, store.ConstraintViolation("invalid summary metadata: %v", err)
	}

	fields := []string{"id", "topic_id", "content", "metadata", "source_url", "source_type", "sentiment", "key_concepts"}
	args := []any{create.ID, create.TopicID, create.Content, metadata, create.SourceURL, create.SourceType, create.Sentiment, pq.Array(create.KeyConcepts)}

	stmt := `
		INSERT INTO summaries (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING created_at
	`
	if err := q.QueryRowContext(ctx, stmt, args...).Scan(&create.CreatedAt); err != nil {
		return nil, mapError(err, "failed to create summary")
	}
	return create, nil
}

func (d *DB) ListSummaries(ctx context.Context, find *store.FindSummary) ([]*store.Summary, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.TopicID != nil {
		where, args = append(where, "topic_id = "+placeholder(len(args)+1)), append(args, *find.TopicID)
	}
	if find.CreatedAfter != nil {
		where, args = append(where, "created_at >= "+placeholder(len(args)+1)), append(args, *find.CreatedAfter)
	}
	if find.CreatedBefore != nil {
		where, args = append(where, "created_at <= "+placeholder(len(args)+1)), append(args, *find.CreatedBefore)
	}

	query := `
		SELECT id, topic_id, content, metadata, created_at, source_url, source_type, sentiment, key_concepts
		FROM summaries
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at DESC, id
	`
	if find.Limit != nil {
		args = append(args, *find.Limit)
		query += " LIMIT " + placeholder(len(args))
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "failed to list summaries")
	}
	defer rows.Close()

	list := []*store.Summary{}
	for rows.Next() {
		summary := &store.Summary{}
		var rawMetadata []byte
		err := rows.Scan(
			&summary.ID,
			&summary.TopicID,
			&summary.Content,
			&rawMetadata,
			&summary.CreatedAt,
			&summary.SourceURL,
			&summary.SourceType,
			&summary.Sentiment,
			pq.Array(&summary.KeyConcepts),
		)
		if err != nil {
			return nil, mapError(err, "failed to scan summary")
		}
		metadata, err := unmarshalMetadata(rawMetadata)
		if err != nil {
			return nil, store.WrapError(err, store.ErrCodeConstraintViolation, "failed to decode summary metadata")
		}
		summary.Metadata = metadata
		list = append(list, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "failed to iterate summaries")
	}
	return list, nil
}

func (d *DB) DeleteSummariesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := d.db.ExecContext(ctx, `DELETE FROM summaries WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, mapError(err, "failed to delete old summaries")
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}
