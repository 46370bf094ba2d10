package sqlite

import (
	"context"
	"sort"
	"time"

	"github.com/topicinsights/topicinsights/store"
)

func (d *DB) CreateTopicEmbedding(ctx context.Context, create *store.TopicEmbedding) (*store.TopicEmbedding, error) {
	metadata, err := marshalJSON(create.Metadata)
	if err != nil {
		return nil, store.ConstraintViolation("invalid embedding metadata: %v", err)
	}

	create.CreatedAt = time.Now()

	stmt := `
		INSERT INTO topic_embeddings (id, topic_id, embedding, metadata, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err = d.db.ExecContext(ctx, stmt,
		create.ID, create.TopicID, encodeVector(create.Embedding), string(metadata), create.CreatedAt.Unix(),
	)
	if err != nil {
		return nil, mapError(err, "failed to store embedding")
	}
	return create, nil
}

// SearchSimilarTopics scans every stored embedding and ranks by cosine
// similarity in Go. Brute force is acceptable here only because the
// sqlite driver targets dev/test data sizes; the postgres driver serves
// production volumes through an ivfflat index.
func (d *DB) SearchSimilarTopics(ctx context.Context, opts *store.SearchSimilarOptions) ([]*store.SimilarTopic, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT topic_id, embedding, metadata
		FROM topic_embeddings
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, mapError(err, "failed to search similar topics")
	}
	defer rows.Close()

	results := []*store.SimilarTopic{}
	for rows.Next() {
		result := &store.SimilarTopic{}
		var rawVector, rawMetadata []byte
		if err := rows.Scan(&result.TopicID, &rawVector, &rawMetadata); err != nil {
			return nil, mapError(err, "failed to scan embedding")
		}
		similarity := cosineSimilarity(decodeVector(rawVector), opts.Vector)
		if similarity <= opts.Threshold {
			continue
		}
		result.Similarity = similarity
		if result.Metadata, err = unmarshalMetadata(rawMetadata); err != nil {
			return nil, store.WrapError(err, store.ErrCodeConstraintViolation, "failed to decode embedding metadata")
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "failed to iterate embeddings")
	}

	// Ties keep insertion order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

func (d *DB) FindTopicsWithoutEmbedding(ctx context.Context, limit int) ([]*store.Topic, error) {
	query := `
		SELECT t.id, t.uid, t.name, t.description, t.keywords, t.owner_id, t.is_active, t.metadata, t.created_at, t.updated_at
		FROM topics t
		LEFT JOIN topic_embeddings e ON t.id = e.topic_id
		WHERE e.id IS NULL
			AND t.is_active = 1
		ORDER BY t.created_at DESC
		LIMIT ?
	`
	rows, err := d.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, mapError(err, "failed to find topics without embedding")
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
