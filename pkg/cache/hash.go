package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// LayoutKey returns the cache key for a layout of the given topology.
// engine names the layout algorithm and its parameters; nodes are ids in
// order; pairs are directed (from, to) node pairs in order. Node order is
// part of the key because layouts are order-sensitive.
func LayoutKey(engine string, nodes []string, pairs [][2]string) string {
	return hashKey("layout", engine, nodes, pairs)
}
