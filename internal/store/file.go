package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/i474232898/weatherpi/internal/common"
	"github.com/i474232898/weatherpi/internal/weather"
)

// DefaultCacheFile is the cache path used when none is configured.
const DefaultCacheFile = ".weatherpi_cache.json"

// FileStore keeps the record as a JSON file. Writes go to a temporary file in the same
// directory which is then renamed over the target, so readers never see a partial record.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore at path.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultCacheFile
	}
	return &FileStore{path: path}
}

// Path returns the cache file location.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context) (weather.Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return weather.Record{}, weather.ErrCacheMiss
	}
	if err != nil {
		return weather.Record{}, fmt.Errorf("read cache file: %w", err)
	}
	return decodeRecord(data)
}

func (s *FileStore) Save(ctx context.Context, rec weather.Record) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return fmt.Errorf("encode cache record: %w", err)
	}
	return common.WriteFileAtomic(s.path, data)
}
