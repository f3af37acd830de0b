package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps one JSON file per key under a directory. It is the
// local durable storage backend used when no redis address is
// configured.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	// keys are fixed names plus an optional ":<user id>" suffix; colons
	// are not filename-safe everywhere
	safe := strings.ReplaceAll(key, ":", "_")
	return filepath.Join(s.Dir, safe+".json")
}

func (s *FileStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	b, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("read cache file: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		// corrupt file reads as a miss; it will be overwritten on the
		// next Put
		return Entry{}, false, fmt.Errorf("decode cache file: %w", err)
	}
	return e, true, nil
}

func (s *FileStore) Put(ctx context.Context, key string, e Entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		return fmt.Errorf("rename cache file: %w", err)
	}
	return nil
}
