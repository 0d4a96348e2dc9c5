package storage

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/pstuifzand/treestate/internal/model"
)

// JSONStore handles JSON file persistence of a forest
type JSONStore struct {
	FilePath string
}

// document is the on-disk shape of a forest
type document struct {
	Items []model.Item `json:"items"`
}

// NewJSONStore creates a new JSON store for the given file path
func NewJSONStore(filePath string) *JSONStore {
	return &JSONStore{
		FilePath: filePath,
	}
}

// Load loads a forest from a JSON file. A missing file yields an empty forest.
func (s *JSONStore) Load() ([]model.Item, error) {
	if s.FilePath == "" {
		return []model.Item{}, nil
	}

	data, err := os.ReadFile(s.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.Item{}, nil
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if doc.Items == nil {
		doc.Items = []model.Item{}
	}

	return doc.Items, nil
}

// Save saves a forest to a JSON file
func (s *JSONStore) Save(items []model.Item) error {
	if s.FilePath == "" {
		return fmt.Errorf("no file path set")
	}

	// Ensure directory exists
	dir := filepath.Dir(s.FilePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(document{Items: items}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	// Write to a temp file and rename it over the original
	tmp := s.FilePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, s.FilePath); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}

	return nil
}

// FileExists checks if the forest file exists
func (s *JSONStore) FileExists() bool {
	_, err := os.Stat(s.FilePath)
	return err == nil
}
