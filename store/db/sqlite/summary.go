package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/topicinsights/topicinsights/store"
)

func (d *DB) CreateSummary(ctx context.Context, create *store.Summary) (*store.Summary, error) {
	return d.createSummary(ctx, d.db, create)
}

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

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (d *DB) createSummary(ctx context.Context, q execer, create *store.Summary) (*store.Summary, error) {
	metadata, err := marshalJSON(create.Metadata)
	if err != nil {
		return nil, store.ConstraintViolation("invalid summary metadata: %v", err)
	}
	var keyConcepts any
	if create.KeyConcepts != nil {
		raw, err := marshalStrings(create.KeyConcepts)
		if err != nil {
			return nil, store.ConstraintViolation("invalid key concepts: %v", err)
		}
		keyConcepts = string(raw)
	}

	create.CreatedAt = time.Now()

	stmt := `
		INSERT INTO summaries (id, topic_id, content, metadata, created_at, source_url, source_type, sentiment, key_concepts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = q.ExecContext(ctx, stmt,
		create.ID, create.TopicID, create.Content, string(metadata), create.CreatedAt.Unix(),
		create.SourceURL, create.SourceType, create.Sentiment, keyConcepts,
	)
	if err != nil {
		return nil, mapError(err, "failed to create summary")
	}
	return create, nil
}

func (d *DB) ListSummaries(ctx context.Context, find *store.FindSummary) ([]*store.Summary, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.TopicID != nil {
		where, args = append(where, "topic_id = ?"), append(args, *find.TopicID)
	}
	if find.CreatedAfter != nil {
		where, args = append(where, "created_at >= ?"), append(args, find.CreatedAfter.Unix())
	}
	if find.CreatedBefore != nil {
		where, args = append(where, "created_at <= ?"), append(args, find.CreatedBefore.Unix())
	}

	query := `
		SELECT id, topic_id, content, metadata, created_at, source_url, source_type, sentiment, key_concepts
		FROM summaries
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at DESC, id
	`
	if find.Limit != nil {
		args = append(args, *find.Limit)
		query += " LIMIT ?"
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "failed to list summaries")
	}
	defer rows.Close()

	list := []*store.Summary{}
	for rows.Next() {
		summary := &store.Summary{}
		var rawMetadata, rawKeyConcepts []byte
		var createdTs int64
		err := rows.Scan(
			&summary.ID,
			&summary.TopicID,
			&summary.Content,
			&rawMetadata,
			&createdTs,
			&summary.SourceURL,
			&summary.SourceType,
			&summary.Sentiment,
			&rawKeyConcepts,
		)
		if err != nil {
			return nil, mapError(err, "failed to scan summary")
		}
		if summary.Metadata, err = unmarshalMetadata(rawMetadata); err != nil {
			return nil, store.WrapError(err, store.ErrCodeConstraintViolation, "failed to decode summary metadata")
		}
		if summary.KeyConcepts, err = unmarshalStrings(rawKeyConcepts); err != nil {
			return nil, store.WrapError(err, store.ErrCodeConstraintViolation, "failed to decode key concepts")
		}
		summary.CreatedAt = time.Unix(createdTs, 0)
		list = append(list, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "failed to iterate summaries")
	}
	return list, nil
}

func (d *DB) DeleteSummariesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := d.db.ExecContext(ctx, `DELETE FROM summaries WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, mapError(err, "failed to delete old summaries")
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}
