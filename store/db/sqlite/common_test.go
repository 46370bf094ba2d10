package sqlite

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topicinsights/topicinsights/store"
)

func TestVectorRoundTrip(t *testing.T) {
	vector := []float32{0, 1, -1, 0.5, 3.1415927, -2.5e-3}

	decoded := decodeVector(encodeVector(vector))
	assert.Equal(t, vector, decoded)

	assert.Empty(t, decodeVector(encodeVector(nil)))
}

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{0, 1, 0}

	assert.InDelta(t, 1.0, float64(cosineSimilarity(a, a)), 1e-6, "identical vectors")
	assert.InDelta(t, 0.0, float64(cosineSimilarity(a, b)), 1e-6, "orthogonal vectors")
	assert.InDelta(t, -1.0, float64(cosineSimilarity(a, []float32{-1, 0, 0})), 1e-6, "opposite vectors")

	// Scaling does not change the similarity.
	scaled := []float32{5, 0, 0}
	assert.InDelta(t, 1.0, float64(cosineSimilarity(a, scaled)), 1e-6)

	// Zero vectors never match anything.
	zero := []float32{0, 0, 0}
	assert.Zero(t, cosineSimilarity(a, zero))
	assert.Zero(t, cosineSimilarity(zero, zero))
}

func TestMarshalStrings(t *testing.T) {
	raw, err := marshalStrings(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw), "nil encodes as an empty JSON array")

	raw, err = marshalStrings([]string{"a", "b"})
	require.NoError(t, err)

	list, err := unmarshalStrings(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, list)
}

func TestUnmarshalMetadata(t *testing.T) {
	metadata, err := unmarshalMetadata(nil)
	require.NoError(t, err)
	assert.NotNil(t, metadata)
	assert.Empty(t, metadata)

	metadata, err = unmarshalMetadata([]byte(`{"region":"eu","score":3}`))
	require.NoError(t, err)
	assert.Equal(t, "eu", metadata["region"])

	_, err = unmarshalMetadata([]byte(`not json`))
	assert.Error(t, err)
}

func TestMapError(t *testing.T) {
	fk := errors.New("constraint failed: FOREIGN KEY constraint failed (787)")
	assert.True(t, store.IsCode(mapError(fk, "insert summary"), store.ErrCodeNotFound))

	unique := errors.New("constraint failed: UNIQUE constraint failed: topics.uid")
	assert.True(t, store.IsCode(mapError(unique, "insert topic"), store.ErrCodeConstraintViolation))

	network := errors.New("database is locked")
	assert.True(t, store.IsCode(mapError(network, "query"), store.ErrCodeConnectionFailed))
}
