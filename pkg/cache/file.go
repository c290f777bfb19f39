package cache

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileCache stores each entry as {dir}/{key}.png.
// The directory is created on the first write.
type FileCache struct {
	dir string
}

// NewFileCache creates a file-based cache rooted at dir.
func NewFileCache(dir string) (Cache, error) {
	if dir == "" {
		return nil, os.ErrInvalid
	}
	return &FileCache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string {
	return c.dir
}

// Get retrieves a value from the cache.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(c.Path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set writes data to a uniquely named temp file and renames it into place.
func (c *FileCache) Set(ctx context.Context, key string, data []byte) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return err
	}

	path := c.Path(key)
	tmp := filepath.Join(c.dir, "."+SanitizeKey(key)+"."+uuid.NewString()+".tmp")
	if err := writeFile(tmp, data); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func writeFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Delete removes a value from the cache.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.Path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Clear removes the cache directory and everything in it.
func (c *FileCache) Clear(ctx context.Context) error {
	return os.RemoveAll(c.dir)
}

// Path converts a cache key to a file path.
func (c *FileCache) Path(key string) string {
	return filepath.Join(c.dir, SanitizeKey(key)+Extension)
}

// Close does nothing for file cache.
func (c *FileCache) Close() error {
	return nil
}

// Ensure FileCache implements Cache.
var _ Cache = (*FileCache)(nil)
