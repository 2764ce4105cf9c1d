package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Aashish23092/kyc-document-verification/dto"
)

// ResultStore persists verification results.
type ResultStore interface {
	Save(ctx context.Context, results []dto.PersonResult) error
}

// JSONFileStore writes results as an indented JSON array, replacing the file
// atomically on every save.
type JSONFileStore struct {
	path string
}

func NewJSONFileStore(path string) *JSONFileStore {
	return &JSONFileStore{path: path}
}

func (s *JSONFileStore) Path() string {
	return s.path
}

func (s *JSONFileStore) Save(_ context.Context, results []dto.PersonResult) error {
	if results == nil {
		results = []dto.PersonResult{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".results-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write results: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

// MultiStore saves to every store in order and stops at the first error.
type MultiStore []ResultStore

func (m MultiStore) Save(ctx context.Context, results []dto.PersonResult) error {
	for _, s := range m {
		if err := s.Save(ctx, results); err != nil {
			return err
		}
	}
	return nil
}
