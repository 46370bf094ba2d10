package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/topicinsights/topicinsights/store"
)

func (d *DB) CreateTopic(ctx context.Context, create *store.Topic) (*store.Topic, error) {
	metadata, err := marshalMetadata(create.Metadata)
	if err != nil {
		return nil, store.ConstraintViolation("invalid topic metadata: %v", err)
	}

	fields := []string{"id", "uid", "name", "description", "keywords", "owner_id", "is_active", "metadata"}
	args := []any{create.ID, create.UID, create.Name, create.Description, pq.Array(create.Keywords), create.OwnerID, create.IsActive, metadata}

	stmt := `
		INSERT INTO topics (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING created_at, updated_at
	`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.CreatedAt, &create.UpdatedAt); err != nil {
		return nil, mapError(err, "failed to create topic")
	}
	return create, nil
}

func (d *DB) ListTopics(ctx context.Context, find *store.FindTopic) ([]*store.Topic, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.UID != nil {
		where, args = append(where, "uid = "+placeholder(len(args)+1)), append(args, *find.UID)
	}
	if find.OwnerID != nil {
		where, args = append(where, "owner_id = "+placeholder(len(args)+1)), append(args, *find.OwnerID)
	}
	if find.IsActive != nil {
		where, args = append(where, "is_active = "+placeholder(len(args)+1)), append(args, *find.IsActive)
	}
	if find.NameSearch != nil {
		where, args = append(where, "name ILIKE "+placeholder(len(args)+1)), append(args, "%"+*find.NameSearch+"%")
	}
	if find.Keyword != nil {
		where, args = append(where, placeholder(len(args)+1)+" = ANY(keywords)"), append(args, *find.Keyword)
	}

	query := `
		SELECT id, uid, name, description, keywords, owner_id, is_active, metadata, created_at, updated_at
		FROM topics
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY updated_at DESC
	`
	if find.Limit != nil {
		args = append(args, *find.Limit)
		query += " LIMIT " + placeholder(len(args))
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "failed to list topics")
	}
	defer rows.Close()

	list := []*store.Topic{}
	for rows.Next() {
		topic, err := scanTopic(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, topic)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "failed to iterate topics")
	}
	return list, nil
}

func (d *DB) UpdateTopic(ctx context.Context, update *store.UpdateTopic) (*store.Topic, error) {
	set, args := []string{}, []any{}

	if update.Name != nil {
		set, args = append(set, "name = "+placeholder(len(args)+1)), append(args, *update.Name)
	}
	if update.Description != nil {
		set, args = append(set, "description = "+placeholder(len(args)+1)), append(args, *update.Description)
	}
	if update.Keywords != nil {
		set, args = append(set, "keywords = "+placeholder(len(args)+1)), append(args, pq.Array(update.Keywords))
	}
	if update.IsActive != nil {
		set, args = append(set, "is_active = "+placeholder(len(args)+1)), append(args, *update.IsActive)
	}
	if update.Metadata != nil {
		metadata, err := marshalMetadata(update.Metadata)
		if err != nil {
			return nil, store.ConstraintViolation("invalid topic metadata: %v", err)
		}
		set, args = append(set, "metadata = "+placeholder(len(args)+1)), append(args, metadata)
	}

	if len(set) == 0 {
		return nil, store.ConstraintViolation("no fields to update")
	}

	// updated_at is refreshed by the update trigger; RETURNING reads the
	// post-trigger row.
	args = append(args, update.ID)
	stmt := `
		UPDATE topics SET ` + strings.Join(set, ", ") + `
		WHERE id = ` + placeholder(len(args)) + `
		RETURNING id, uid, name, description, keywords, owner_id, is_active, metadata, created_at, updated_at
	`
	topic, err := scanTopic(d.db.QueryRowContext(ctx, stmt, args...))
	if err != nil {
		return nil, err
	}
	return topic, nil
}

// DeleteTopic deletes the topic and all dependent rows in one transaction.
// No partial cascade is ever visible to other readers.
func (d *DB) DeleteTopic(ctx context.Context, id uuid.UUID) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM topic_embeddings WHERE topic_id = $1`, id); err != nil {
		return mapError(err, "failed to delete topic embeddings")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM summaries WHERE topic_id = $1`, id); err != nil {
		return mapError(err, "failed to delete summaries")
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM topics WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "failed to delete topic")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return store.NotFound("topic %s not found", id)
	}

	if err := tx.Commit(); err != nil {
		return mapError(err, "failed to commit topic deletion")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTopic(row rowScanner) (*store.Topic, error) {
	topic := &store.Topic{}
	var rawMetadata []byte
	err := row.Scan(
		&topic.ID,
		&topic.UID,
		&topic.Name,
		&topic.Description,
		pq.Array(&topic.Keywords),
		&topic.OwnerID,
		&topic.IsActive,
		&rawMetadata,
		&topic.CreatedAt,
		&topic.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.NotFound("topic not found")
		}
		return nil, mapError(err, "failed to scan topic")
	}
	metadata, err := unmarshalMetadata(rawMetadata)
	if err != nil {
		return nil, store.WrapError(err, store.ErrCodeConstraintViolation, "failed to decode topic metadata")
	}
	topic.Metadata = metadata
	return topic, nil
}
