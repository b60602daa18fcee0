package subscription

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
)

// Store persists the subscriber set.
type Store interface {
	Load() ([]int64, error)
	Save(ids []int64) error
}

// FileStore keeps subscribers as a JSON array of chat ids.
type FileStore struct {
	Path string
}

// NewFileStore creates a FileStore at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the subscriber file. A missing or malformed file loads as empty.
func (s *FileStore) Load() ([]int64, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		log.Printf("[WARN] subscriber file %s is malformed, starting empty: %v", s.Path, err)
		return nil, nil
	}
	return ids, nil
}

// Save writes ids to a temp file next to Path and renames it into place.
func (s *FileStore) Save(ids []int64) error {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	if sorted == nil {
		sorted = []int64{}
	}
	data, err := json.MarshalIndent(sorted, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", tmpName, err)
	}
	return nil
}
