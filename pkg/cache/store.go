package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
)

// Store is a TTL key/value cache for JSON-serializable values.
// Get reports false on a miss; errors are reserved for the transport.
type Store interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Key joins the parts into a namespaced key. Long parts are hashed so keys
// stay bounded whatever the query length.
func Key(namespace string, parts ...string) string {
	joined := strings.Join(parts, "\x1f")
	if len(joined) > 64 {
		sum := sha1.Sum([]byte(joined))
		joined = hex.EncodeToString(sum[:])
	}
	return namespace + ":" + joined
}

func encode(value interface{}) ([]byte, error) {
	return json.Marshal(value)
}

func decode(raw []byte, dest interface{}) error {
	return json.Unmarshal(raw, dest)
}
