package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"scholarnet/internal/graph"
	"scholarnet/internal/logger"
	"scholarnet/internal/models"
	"scholarnet/internal/util"
)

const StagedFileName = "documents.json"

// Entry is one manifest record: a document plus an optional PDF it came from.
type Entry struct {
	models.Document
	PDFPath string `json:"pdf_path,omitempty"`
}

type Manifest struct {
	Documents []Entry `json:"documents"`
}

// ParseManifest accepts either {"documents": [...]} or a bare array of documents.
func ParseManifest(b []byte) (Manifest, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return Manifest{}, fmt.Errorf("%w: empty input", util.ErrInvalidManifest)
	}
	var m Manifest
	if b[0] == '[' {
		if err := json.Unmarshal(b, &m.Documents); err != nil {
			return Manifest{}, fmt.Errorf("%w: %v", util.ErrInvalidManifest, err)
		}
		return m, nil
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return Manifest{}, fmt.Errorf("%w: %v", util.ErrInvalidManifest, err)
	}
	return m, nil
}

func LoadManifest(path string) (Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(b)
}

// Resolve turns manifest entries into documents. PDF paths are resolved under
// baseDir. Entries without an id take the PDF's SHA-256; entries without text
// get it extracted from the PDF. Documents are normalised and those still
// lacking an id are dropped.
func Resolve(ctx context.Context, m Manifest, baseDir string) ([]models.Document, error) {
	docs := make([]models.Document, 0, len(m.Documents))
	for i, e := range m.Documents {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc := e.Document
		if strings.TrimSpace(e.PDFPath) != "" {
			if err := attachPDF(&doc, baseDir, e.PDFPath); err != nil {
				return nil, fmt.Errorf("manifest entry %d: %w", i, err)
			}
		}
		docs = append(docs, doc)
	}
	out := graph.NormalizeDocuments(docs)
	if dropped := len(docs) - len(out); dropped > 0 {
		logger.Warn("dropped documents without id", "count", dropped)
	}
	return out, nil
}

func attachPDF(doc *models.Document, baseDir, rel string) error {
	path, err := util.ResolveUnder(baseDir, rel)
	if err != nil {
		return err
	}
	if strings.TrimSpace(doc.ID) == "" {
		id, err := util.SHA256File(path)
		if err != nil {
			return err
		}
		doc.ID = id
	}
	if doc.FullText != "" {
		return nil
	}
	text, err := ExtractPDFText(path)
	switch {
	case errors.Is(err, util.ErrNoExtractableText):
		logger.Warn("pdf has no extractable text", "document", doc.ID, "path", path)
	case err != nil:
		logger.Warn("pdf text extraction failed", "document", doc.ID, "path", path, "err", err)
	default:
		doc.FullText = text
	}
	return nil
}

// LoadDocuments reads the manifest at path and resolves it relative to the
// manifest's directory.
func LoadDocuments(ctx context.Context, path string) ([]models.Document, error) {
	m, err := LoadManifest(path)
	if err != nil {
		return nil, err
	}
	return Resolve(ctx, m, filepath.Dir(path))
}

// Stage writes docs to <root>/<runID>/documents.json for a worker to pick up.
func Stage(root, runID string, docs []models.Document) (string, error) {
	path := filepath.Join(root, runID, StagedFileName)
	entries := make([]Entry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, Entry{Document: d})
	}
	if err := util.WriteJSONAtomic(path, Manifest{Documents: entries}); err != nil {
		return "", fmt.Errorf("stage documents: %w", err)
	}
	return path, nil
}

// Unstage removes everything staged for runID.
func Unstage(root, runID string) error {
	if runID == "" {
		return nil
	}
	if err := os.RemoveAll(filepath.Join(root, runID)); err != nil {
		return fmt.Errorf("unstage documents: %w", err)
	}
	return nil
}
