package kb

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Document is a whole markdown file from the knowledge base.
type Document struct {
	FilePath string // Relative to the corpus root, forward slashes
	Text     string
}

// LoadCorpus walks the corpus root and returns all markdown documents, sorted
// by path so repeated loads see the files in the same order.
func LoadCorpus(root string) ([]Document, error) {
	var docs []Document

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}
		if d.IsDir() {
			// Skip hidden directories (editor state, VCS metadata)
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".md" {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", path, err)
		}

		docs = append(docs, Document{
			FilePath: filepath.ToSlash(relPath),
			Text:     string(content),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].FilePath < docs[j].FilePath })
	return docs, nil
}

// ReadDocument reads a single document by its corpus-relative path.
func ReadDocument(root, relPath string) (string, error) {
	content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(relPath)))
	if err != nil {
		return "", fmt.Errorf("failed to read document %s: %w", relPath, err)
	}
	return string(content), nil
}
