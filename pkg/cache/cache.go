// Package cache persists composed artifacts on local disk.
//
// The byte-level [Cache] interface stores encoded PNGs by key. [FileCache]
// writes {dir}/{key}.png using a temp-file-then-rename so concurrent readers
// never observe a partial file; [NullCache] stores nothing and backs
// --no-cache runs.
//
// [Store] layers the read-through/write-through artifact policy on top:
// one cache per module under {root}/{module}, a force flag that bypasses
// reads, and an alias table so descendant lookup keys resolve to the
// composite they were drawn into.
package cache

import (
	"context"
	"strings"
)

// Cache stores encoded artifacts by key.
type Cache interface {
	// Get returns the stored bytes for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key, replacing any previous value.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry.
	Clear(ctx context.Context) error

	// Path returns where key is or would be persisted, or "" for caches
	// without a backing file.
	Path(key string) string

	// Close releases resources held by the cache.
	Close() error
}

// Extension is appended to every persisted artifact.
const Extension = ".png"

var unsafeKeyChars = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
	"\"", "_", "<", "_", ">", "_", "|", "_", "\x00", "_",
)

// SanitizeKey maps key to a string that is safe as a single file or
// directory name on every supported platform.
func SanitizeKey(key string) string {
	key = unsafeKeyChars.Replace(key)
	if key == "." || key == ".." {
		return "_"
	}
	return key
}
