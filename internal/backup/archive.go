// Package backup builds and reads user backup archives: a zip holding
// data.json (documents per collection) and config.json (archive metadata).
package backup

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	dataFileName   = "data.json"
	configFileName = "config.json"

	// FormatVersion is written into config.json and checked on restore.
	FormatVersion = 1
)

// Meta is the content of config.json.
type Meta struct {
	Version     int            `json:"version"`
	CreatedAt   time.Time      `json:"createdAt"`
	Collections map[string]int `json:"collections"`
}

// Build serializes the per-collection documents into a zip archive.
func Build(data map[string][]bson.M, createdAt time.Time) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	meta := Meta{
		Version:     FormatVersion,
		CreatedAt:   createdAt,
		Collections: make(map[string]int, len(data)),
	}
	for coll, docs := range data {
		meta.Collections[coll] = len(docs)
	}

	if err := writeJSONEntry(w, configFileName, meta); err != nil {
		return nil, err
	}
	if err := writeJSONEntry(w, dataFileName, data); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

func writeJSONEntry(w *zip.Writer, name string, v interface{}) error {
	entry, err := w.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	enc := json.NewEncoder(entry)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return nil
}

// Parse extracts the documents and metadata from an archive built by Build.
func Parse(archive []byte) (map[string][]bson.M, *Meta, error) {
	r, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, nil, fmt.Errorf("not a valid backup archive: %w", err)
	}

	var (
		data map[string][]bson.M
		meta *Meta
	)
	for _, f := range r.File {
		switch f.Name {
		case dataFileName:
			if err := readJSONEntry(f, &data); err != nil {
				return nil, nil, err
			}
		case configFileName:
			meta = &Meta{}
			if err := readJSONEntry(f, meta); err != nil {
				return nil, nil, err
			}
		}
	}

	if data == nil {
		return nil, nil, fmt.Errorf("archive is missing %s", dataFileName)
	}
	if meta == nil {
		return nil, nil, fmt.Errorf("archive is missing %s", configFileName)
	}
	if meta.Version > FormatVersion {
		return nil, nil, fmt.Errorf("unsupported archive version %d", meta.Version)
	}
	return data, meta, nil
}

func readJSONEntry(f *zip.File, v interface{}) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", f.Name, err)
	}
	return nil
}
