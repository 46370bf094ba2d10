package postgres

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/topicinsights/topicinsights/store"
)

func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func placeholders(n int) string {
	list := make([]string, n)
	for i := range list {
		list[i] = placeholder(i + 1)
	}
	return strings.Join(list, ", ")
}

func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return json.Marshal(metadata)
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

// Postgres error classes relevant to the store contract.
const (
	pqForeignKeyViolation = "23503"
	pqConnectionClass     = "08"
)

// mapError translates low-level postgres failures into the store's typed
// taxonomy. A foreign key violation means the referenced topic does not
// exist; class 08 errors are transient connection failures.
func mapError(err error, msg string) error {
	if pqErr, ok := err.(*pq.Error); ok {
		if string(pqErr.Code) == pqForeignKeyViolation {
			return store.NotFound("%s: referenced topic does not exist", msg)
		}
		if strings.HasPrefix(string(pqErr.Code), pqConnectionClass) {
			return store.ConnectionFailed(err, msg)
		}
		// The server rejected the statement: some constraint was violated.
		return store.WrapError(err, store.ErrCodeConstraintViolation, msg)
	}
	// Anything that never reached the server is an infrastructure failure.
	return store.ConnectionFailed(err, msg)
}
