package store

import (
	"encoding/json"
	"os"

	"github.com/gobmr/gobmr/internal/override"
)

// Store persists temperature overrides across restarts.
type Store interface {
	Load() (map[string]override.Record, error)
	Save(map[string]override.Record) error
}

// FileStore keeps overrides in a single JSON document, written atomically
// via a temp file and rename.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (map[string]override.Record, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]override.Record{}, nil
		}
		return nil, err
	}
	defer file.Close()

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return nil, err
	}
	return override.DecodeRecords(raw), nil
}

func (s *FileStore) Save(records map[string]override.Record) error {
	tmpPath := s.path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		file.Close()
		return err
	}
	file.Sync()
	file.Close()

	return os.Rename(tmpPath, s.path)
}
