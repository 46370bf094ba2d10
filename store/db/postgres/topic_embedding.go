package postgres

import (
	"context"

	"github.com/pgvector/pgvector-go"

	"github.com/topicinsights/topicinsights/store"
)

// CreateTopicEmbedding persists a vector through the store_embeddings
// SQL function, which is the store's embedding entry point.
func (d *DB) CreateTopicEmbedding(ctx context.Context, create *store.TopicEmbedding) (*store.TopicEmbedding, error) {
	metadata, err := marshalMetadata(create.Metadata)
	if err != nil {
		return nil, store.ConstraintViolation("invalid embedding metadata: %v", err)
	}

	stmt := `
		WITH ins AS (
			SELECT store_embeddings($1, $2, $3) AS id
		)
		SELECT ins.id, e.created_at
		FROM ins
		JOIN topic_embeddings e ON e.id = ins.id
	`
	vector := pgvector.NewVector(create.Embedding)
	if err := d.db.QueryRowContext(ctx, stmt, create.TopicID, vector, metadata).Scan(&create.ID, &create.CreatedAt); err != nil {
		return nil, mapError(err, "failed to store embedding")
	}
	return create, nil
}

// SearchSimilarTopics ranks embeddings by cosine similarity through the
// search_similar_content SQL function, backed by the ivfflat index.
func (d *DB) SearchSimilarTopics(ctx context.Context, opts *store.SearchSimilarOptions) ([]*store.SimilarTopic, error) {
	stmt := `SELECT topic_id, similarity, metadata FROM search_similar_content($1, $2, $3)`

	vector := pgvector.NewVector(opts.Vector)
	rows, err := d.db.QueryContext(ctx, stmt, vector, opts.Threshold, opts.Limit)
	if err != nil {
		return nil, mapError(err, "failed to search similar topics")
	}
	defer rows.Close()

	results := []*store.SimilarTopic{}
	for rows.Next() {
		result := &store.SimilarTopic{}
		var rawMetadata []byte
		if err := rows.Scan(&result.TopicID, &result.Similarity, &rawMetadata); err != nil {
			return nil, mapError(err, "failed to scan similarity result")
		}
		metadata, err := unmarshalMetadata(rawMetadata)
		if err != nil {
			return nil, store.WrapError(err, store.ErrCodeConstraintViolation, "failed to decode embedding metadata")
		}
		result.Metadata = metadata
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "failed to iterate similarity results")
	}
	return results, nil
}

// FindTopicsWithoutEmbedding returns active topics that have no embedding
// row yet, newest first.
func (d *DB) FindTopicsWithoutEmbedding(ctx context.Context, limit int) ([]*store.Topic, error) {
	query := `
		SELECT t.id, t.uid, t.name, t.description, t.keywords, t.owner_id, t.is_active, t.metadata, t.created_at, t.updated_at
		FROM topics t
		LEFT JOIN topic_embeddings e ON t.id = e.topic_id
		WHERE e.id IS NULL
			AND t.is_active = true
		ORDER BY t.created_at DESC
		LIMIT $1
	`
	rows, err := d.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, mapError(err, "failed to find topics without embedding")
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
