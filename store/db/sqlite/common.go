package sqlite

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"strings"

	"github.com/topicinsights/topicinsights/store"
)

func marshalJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}

func unmarshalMetadata(raw []byte) (map[string]any, error) {
	metadata := map[string]any{}
	if len(raw) == 0 {
		return metadata, nil
	}
	if err := json.Unmarshal(raw, &metadata); err != nil {
		return nil, err
	}
	return metadata, nil
}

func marshalStrings(list []string) ([]byte, error) {
	if list == nil {
		list = []string{}
	}
	return json.Marshal(list)
}

func unmarshalStrings(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// encodeVector packs a float32 vector as little-endian bytes.
func encodeVector(vector []float32) []byte {
	buf := make([]byte, 4*len(vector))
	for i, v := range vector {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	vector := make([]float32, len(buf)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vector
}

// cosineSimilarity is 1 - cosine distance. A zero vector on either side
// yields zero similarity.
func cosineSimilarity(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// mapError translates sqlite failures into the store's typed taxonomy.
func mapError(err error, msg string) error {
	text := err.Error()
	if strings.Contains(text, "FOREIGN KEY constraint failed") {
		return store.NotFound("%s: referenced topic does not exist", msg)
	}
	if strings.Contains(text, "constraint") {
		return store.WrapError(err, store.ErrCodeConstraintViolation, msg)
	}
	return store.ConnectionFailed(err, msg)
}
