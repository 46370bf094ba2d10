package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/topicinsights/topicinsights/store"
)

func (d *DB) CreateTopic(ctx context.Context, create *store.Topic) (*store.Topic, error) {
	metadata, err := marshalJSON(create.Metadata)
	if err != nil {
		return nil, store.ConstraintViolation("invalid topic metadata: %v", err)
	}
	keywords, err := marshalStrings(create.Keywords)
	if err != nil {
		return nil, store.ConstraintViolation("invalid topic keywords: %v", err)
	}

	now := time.Now()
	create.CreatedAt = now
	create.UpdatedAt = now

	stmt := `
		INSERT INTO topics (id, uid, name, description, keywords, owner_id, is_active, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	// JSON columns are bound as strings so they land as TEXT, not BLOB;
	// BLOB operands would defeat LIKE and json_each lookups.
	_, err = d.db.ExecContext(ctx, stmt,
		create.ID, create.UID, create.Name, create.Description, string(keywords),
		create.OwnerID, create.IsActive, string(metadata), now.Unix(), now.Unix(),
	)
	if err != nil {
		return nil, mapError(err, "failed to create topic")
	}
	return create, nil
}

func (d *DB) ListTopics(ctx context.Context, find *store.FindTopic) ([]*store.Topic, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.UID != nil {
		where, args = append(where, "uid = ?"), append(args, *find.UID)
	}
	if find.OwnerID != nil {
		where, args = append(where, "owner_id = ?"), append(args, *find.OwnerID)
	}
	if find.IsActive != nil {
		where, args = append(where, "is_active = ?"), append(args, *find.IsActive)
	}
	if find.NameSearch != nil {
		where, args = append(where, "name LIKE ?"), append(args, "%"+*find.NameSearch+"%")
	}
	if find.Keyword != nil {
		// keywords is a JSON array; membership via json_each.
		where, args = append(where, "EXISTS (SELECT 1 FROM json_each(keywords) WHERE json_each.value = ?)"), append(args, *find.Keyword)
	}

	query := `
		SELECT id, uid, name, description, keywords, owner_id, is_active, metadata, created_at, updated_at
		FROM topics
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY updated_at DESC
	`
	if find.Limit != nil {
		args = append(args, *find.Limit)
		query += " LIMIT ?"
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "failed to list topics")
	}
	defer rows.Close()

	list := []*store.Topic{}
	for rows.Next() {
		topic := &store.Topic{}
		var rawKeywords, rawMetadata []byte
		var createdTs, updatedTs int64
		err := rows.Scan(
			&topic.ID,
			&topic.UID,
			&topic.Name,
			&topic.Description,
			&rawKeywords,
			&topic.OwnerID,
			&topic.IsActive,
			&rawMetadata,
			&createdTs,
			&updatedTs,
		)
		if err != nil {
			return nil, mapError(err, "failed to scan topic")
		}
		if topic.Keywords, err = unmarshalStrings(rawKeywords); err != nil {
			return nil, store.WrapError(err, store.ErrCodeConstraintViolation, "failed to decode topic keywords")
		}
		if topic.Metadata, err = unmarshalMetadata(rawMetadata); err != nil {
			return nil, store.WrapError(err, store.ErrCodeConstraintViolation, "failed to decode topic metadata")
		}
		topic.CreatedAt = time.Unix(createdTs, 0)
		topic.UpdatedAt = time.Unix(updatedTs, 0)
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
		set, args = append(set, "name = ?"), append(args, *update.Name)
	}
	if update.Description != nil {
		set, args = append(set, "description = ?"), append(args, *update.Description)
	}
	if update.Keywords != nil {
		keywords, err := marshalStrings(update.Keywords)
		if err != nil {
			return nil, store.ConstraintViolation("invalid topic keywords: %v", err)
		}
		set, args = append(set, "keywords = ?"), append(args, string(keywords))
	}
	if update.IsActive != nil {
		set, args = append(set, "is_active = ?"), append(args, *update.IsActive)
	}
	if update.Metadata != nil {
		metadata, err := marshalJSON(update.Metadata)
		if err != nil {
			return nil, store.ConstraintViolation("invalid topic metadata: %v", err)
		}
		set, args = append(set, "metadata = ?"), append(args, string(metadata))
	}

	if len(set) == 0 {
		return nil, store.ConstraintViolation("no fields to update")
	}

	// MAX keeps updated_at monotonically non-decreasing even if the
	// wall clock steps backwards between writes.
	set = append(set, "updated_at = MAX(updated_at, ?)")
	args = append(args, time.Now().Unix())

	args = append(args, update.ID)
	stmt := `UPDATE topics SET ` + strings.Join(set, ", ") + ` WHERE id = ?`
	result, err := d.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, mapError(err, "failed to update topic")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, store.NotFound("topic %s not found", update.ID)
	}

	id := update.ID
	list, err := d.ListTopics(ctx, &store.FindTopic{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, store.NotFound("topic %s not found", update.ID)
	}
	return list[0], nil
}

func (d *DB) DeleteTopic(ctx context.Context, id uuid.UUID) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM topic_embeddings WHERE topic_id = ?`, id); err != nil {
		return mapError(err, "failed to delete topic embeddings")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM summaries WHERE topic_id = ?`, id); err != nil {
		return mapError(err, "failed to delete summaries")
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM topics WHERE id = ?`, id)
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
