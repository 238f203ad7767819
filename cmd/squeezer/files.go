package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gucorpling/squeezer/pkg/codec"
	"github.com/gucorpling/squeezer/pkg/domain"
)

// readDocument decodes a file, or stdin for "-" (as JSON unless --format says otherwise).
func readDocument(path string, stdinFormat codec.Format) (*domain.Document, error) {
	var (
		r      io.Reader
		format codec.Format
	)
	if path == "-" {
		r, format = os.Stdin, stdinFormat
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r, format = f, codec.FormatFromPath(path)
	}
	doc, err := codec.Decode(r, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if doc.ID == "" && path != "-" {
		base := filepath.Base(path)
		doc.ID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return doc, nil
}
