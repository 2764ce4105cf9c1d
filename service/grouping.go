package service

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/Aashish23092/kyc-document-verification/dto"
	"github.com/Aashish23092/kyc-document-verification/utils"
)

// GroupDocuments walks dir recursively and groups supported files by the
// first prefixLen characters of their file name, which identify the person.
// Files are taken in relative path order and at most maxDocs are kept per
// person; groups are returned in order of first appearance. Document names
// are slash-separated paths relative to dir.
func GroupDocuments(dir string, prefixLen, maxDocs int) ([]PersonDocuments, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !dto.IsSupportedFile(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read data directory: %w", err)
	}
	sort.Strings(paths)

	index := make(map[string]int)
	var groups []PersonDocuments
	for _, rel := range paths {
		personID := personPrefix(filepath.Base(rel), prefixLen)

		i, ok := index[personID]
		if !ok {
			i = len(groups)
			index[personID] = i
			groups = append(groups, PersonDocuments{PersonID: personID})
		}
		if maxDocs > 0 && len(groups[i].Documents) >= maxDocs {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", rel, err)
		}
		groups[i].Documents = append(groups[i].Documents, Document{
			Name:     rel,
			Data:     data,
			MimeType: utils.InferMimeType(rel),
		})
	}
	return groups, nil
}

// personPrefix returns the first n characters of name.
func personPrefix(name string, n int) string {
	r := []rune(name)
	if n <= 0 || len(r) <= n {
		return name
	}
	return string(r[:n])
}
