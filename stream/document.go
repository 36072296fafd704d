// Package stream models the ordered document stream a preparation run flows
// through: loading built assets from disk, partitioning them by a glob
// pattern, and writing the results back.
package stream

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Document is one file payload moving through the pipeline. Its identity is
// the slash-separated path relative to the build root.
type Document struct {
	Path     string
	Contents []byte
}

// Load walks root and returns its regular files as an ordered document
// stream. fs.WalkDir visits entries in lexical order, so the stream is
// deterministic for a given tree.
func Load(root string) ([]Document, error) {
	var docs []Document

	err := fs.WalkDir(os.DirFS(root), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(path)))
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		docs = append(docs, Document{Path: path, Contents: data})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load documents from %s: %w", root, err)
	}

	return docs, nil
}

// Store writes each document under root, creating parent directories as
// needed. Document paths are preserved, so a Load/Store pair round-trips a
// tree.
func Store(root string, docs []Document) error {
	for _, doc := range docs {
		target := filepath.Join(root, filepath.FromSlash(doc.Path))
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("create directory for %s: %w", doc.Path, err)
		}
		if err := os.WriteFile(target, doc.Contents, 0644); err != nil {
			return fmt.Errorf("write %s: %w", doc.Path, err)
		}
	}
	return nil
}
