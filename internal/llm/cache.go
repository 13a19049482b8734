package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Cache stores normalized records by content key.
type Cache interface {
	Get(key string) (Record, bool, error)
	Put(key string, rec Record) error
	Reset() error
}

// ContentKey is the hex SHA-256 of the document text.
func ContentKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// FileCache keeps one <key>.json file per record under Dir.
type FileCache struct {
	dir    string
	logger *slog.Logger
}

var _ Cache = (*FileCache)(nil)

func NewFileCache(dir string, logger *slog.Logger) (*FileCache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileCache{dir: dir, logger: logger}, nil
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

// Path returns the file backing key.
func (c *FileCache) Path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// Get returns ok=false on a miss. An unreadable entry is logged and treated
// as a miss so the next call can overwrite it.
func (c *FileCache) Get(key string) (Record, bool, error) {
	b, err := os.ReadFile(c.Path(key))
	if errors.Is(err, os.ErrNotExist) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("read cache entry: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		c.logger.Warn("llm.cache.corrupt_entry", "key", key, "error", err)
		return Record{}, false, nil
	}
	return rec, true, nil
}

func (c *FileCache) Put(key string, rec Record) error {
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(c.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	_, werr := tmp.Write(b)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", errors.Join(werr, cerr))
	}
	if err := os.Rename(tmp.Name(), c.Path(key)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("commit cache entry: %w", err)
	}
	return nil
}

// Reset removes every entry by deleting and recreating the directory.
func (c *FileCache) Reset() error {
	if err := os.RemoveAll(c.dir); err != nil {
		return fmt.Errorf("remove cache dir: %w", err)
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("recreate cache dir: %w", err)
	}
	c.logger.Info("llm.cache.reset", "dir", c.dir)
	return nil
}
