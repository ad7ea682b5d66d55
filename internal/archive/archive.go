package archive

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	dataURIPrefix = "data:application/pdf;base64,"
	extension     = ".pdf"
)

var pdfMagic = []byte("%PDF-")

var ErrInvalidDocument = errors.New("invalid document")

// Stored describes a document written to the archive.
type Stored struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int    `json:"size"`
}

// Store keeps uploaded invoice documents in a directory served under
// baseURL.
type Store struct {
	dir     string
	baseURL string
}

func NewStore(dir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &Store{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir is where documents are written.
func (s *Store) Dir() string {
	return s.dir
}

// SaveEncoded decodes a base64 document, with or without the PDF data URI
// prefix, and stores it under filename. A blank filename gets a generated
// one.
func (s *Store) SaveEncoded(ctx context.Context, filename, encoded string) (Stored, error) {
	encoded = strings.TrimPrefix(strings.TrimSpace(encoded), dataURIPrefix)
	if encoded == "" {
		return Stored{}, fmt.Errorf("%w: empty payload", ErrInvalidDocument)
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Stored{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return s.Save(ctx, filename, data)
}

func (s *Store) Save(ctx context.Context, filename string, data []byte) (Stored, error) {
	if len(data) == 0 {
		return Stored{}, fmt.Errorf("%w: empty document", ErrInvalidDocument)
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return Stored{}, fmt.Errorf("%w: not a pdf", ErrInvalidDocument)
	}
	if err := ctx.Err(); err != nil {
		return Stored{}, err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return Stored{}, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return Stored{}, fmt.Errorf("write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Stored{}, fmt.Errorf("close document: %w", err)
	}

	name, err := s.place(tmp.Name(), cleanName(filename))
	if err != nil {
		return Stored{}, fmt.Errorf("store document: %w", err)
	}

	return Stored{Name: name, URL: s.baseURL + "/" + url.PathEscape(name), Size: len(data)}, nil
}

// place links the temp file under name, or under a suffixed variant when
// name is taken. Existing documents are never replaced.
func (s *Store) place(tmp, name string) (string, error) {
	err := os.Link(tmp, filepath.Join(s.dir, name))
	if !errors.Is(err, fs.ErrExist) {
		return name, err
	}
	name = strings.TrimSuffix(name, extension) + "_" + uuid.NewString()[:8] + extension
	return name, os.Link(tmp, filepath.Join(s.dir, name))
}

// cleanName keeps only the base name so uploads never leave the archive
// directory, and always ends it in .pdf.
func cleanName(filename string) string {
	name := filepath.Base(strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/"))
	if name == "." || name == "/" || name == ".." || name == "" || strings.HasPrefix(name, ".") {
		return "factura_" + uuid.NewString() + extension
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + extension
}
