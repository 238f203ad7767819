package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gucorpling/squeezer/pkg/codec"
	"github.com/gucorpling/squeezer/pkg/domain"
)

var extensions = []string{".json", ".yaml", ".yml"}

// Store implements ports.DocumentStore using the local filesystem.
// Each document is one JSON or YAML file named after its ID. Reads accept
// any of the known extensions; writes use the configured format.
type Store struct {
	BasePath string
	Format   codec.Format
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".squeezer/documents".
func New(basePath string, format codec.Format) *Store {
	if basePath == "" {
		basePath = filepath.Join(".squeezer", "documents")
	}
	if format == "" {
		format = codec.FormatJSON
	}
	return &Store{BasePath: basePath, Format: format}
}

func (s *Store) ext() string {
	if s.Format == codec.FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// Save persists the document atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, doc *domain.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document ID cannot be empty")
	}

	// Ensure directory exists
	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure document directory: %w", err)
	}

	destPath := filepath.Join(s.BasePath, doc.ID+s.ext())

	data, err := codec.Marshal(doc, s.Format)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	// 1. Create Temp File in the same directory (atomic rename needs the same filesystem)
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+doc.ID+"-*"+s.ext())
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	// 2. Write Data
	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	// 3. Fsync to ensure durability
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}

	// 4. Close File (cannot rename open file on Windows)
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// 5. Rename. On Windows os.Rename fails if dest exists, so remove it first.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing document file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to document: %w", err)
	}
	return nil
}

// Load reads a document, trying the configured extension first.
func (s *Store) Load(ctx context.Context, id string) (*domain.Document, error) {
	if id == "" {
		return nil, fmt.Errorf("document ID cannot be empty")
	}

	for _, ext := range s.candidates() {
		path := filepath.Join(s.BasePath, id+ext)
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to open document file: %w", err)
		}
		doc, err := codec.Decode(f, codec.FormatFromPath(path))
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("document %q: %w", id, err)
		}
		// The file name is authoritative.
		doc.ID = id
		return doc, nil
	}
	return nil, domain.ErrDocumentNotFound
}

func (s *Store) candidates() []string {
	out := []string{s.ext()}
	for _, ext := range extensions {
		if ext != s.ext() {
			out = append(out, ext)
		}
	}
	return out
}

// Delete removes every file stored for the document.
func (s *Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("document ID cannot be empty")
	}
	for _, ext := range extensions {
		err := os.Remove(filepath.Join(s.BasePath, id+ext))
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete document file: %w", err)
		}
	}
	return nil
}

// List returns all document IDs in the directory, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	seen := make(map[string]struct{})
	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "tmp-") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if !isDocumentExt(ext) {
			continue
		}
		id := name[:len(name)-len(ext)]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func isDocumentExt(ext string) bool {
	for _, e := range extensions {
		if e == ext {
			return true
		}
	}
	return false
}
