package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashish23092/kyc-document-verification/dto"
)

func sampleResult() dto.PersonResult {
	fields := dto.NewExtractedFields()
	fields[dto.FieldFullName] = "Rahul Sharma"
	return dto.PersonResult{
		PersonID:      "P001",
		ExtractedData: map[string]dto.ExtractedFields{"document_1": fields},
		VerificationResults: map[dto.RuleID]dto.RuleOutcome{
			dto.RuleNameMatch: dto.Pass("").WithScore(100),
		},
		OverallStatus: dto.StatusVerified,
	}
}

func TestJSONFileStoreSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outputs", "results.json")
	s := NewJSONFileStore(path)

	require.NoError(t, s.Save(context.Background(), []dto.PersonResult{sampleResult()}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  {\n    \"person_id\": \"P001\"")

	var decoded []dto.PersonResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, dto.StatusVerified, decoded[0].OverallStatus)
	assert.Equal(t, 100.0, *decoded[0].VerificationResults[dto.RuleNameMatch].Score)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestJSONFileStoreOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	s := NewJSONFileStore(path)

	require.NoError(t, s.Save(context.Background(), []dto.PersonResult{sampleResult()}))
	require.NoError(t, s.Save(context.Background(), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

type failingStore struct{ calls int }

func (f *failingStore) Save(context.Context, []dto.PersonResult) error {
	f.calls++
	return errors.New("disk full")
}

func TestMultiStoreStopsAtFirstError(t *testing.T) {
	first := &failingStore{}
	second := &failingStore{}

	err := MultiStore{first, second}.Save(context.Background(), nil)
	assert.EqualError(t, err, "disk full")
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls)
}
