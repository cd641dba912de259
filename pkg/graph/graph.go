package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/flowchart/pkg/errors"
)

// Format is a document codec.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the codec from a file extension. Anything other than
// .toml is JSON.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatJSON
}

// =============================================================================
// Document Serialization API
// =============================================================================

// ReadDocumentFile reads and validates a document, choosing the codec from
// the file extension.
func ReadDocumentFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDocument(f, FormatFromPath(path))
}

// ReadDocument decodes and validates a document.
func ReadDocument(r io.Reader, format Format) (*Document, error) {
	var doc Document
	var err error
	switch format {
	case FormatTOML:
		_, err = toml.NewDecoder(r).Decode(&doc)
	default:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s document", format)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// WriteDocumentFile writes a document, choosing the codec from the file
// extension. The file is created with 0644 permissions.
func WriteDocumentFile(doc *Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteDocument(f, doc, FormatFromPath(path))
}

// WriteDocument encodes a document.
func WriteDocument(w io.Writer, doc *Document, format Format) error {
	if format == FormatTOML {
		if err := toml.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	}
	return writeJSON(w, doc)
}

// MarshalDocument converts a document to indented JSON bytes.
func MarshalDocument(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFrame writes a frame as indented JSON.
func WriteFrame(w io.Writer, f Frame) error {
	return writeJSON(w, f)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
