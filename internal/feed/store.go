package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// LoadResult reports what Load recovered from disk.
type LoadResult struct {
	Doc     *FeedDocument
	Skipped int // malformed items dropped during decode
	Existed bool
}

// Load reads a feed document from path. A missing file yields an empty
// document. Items are decoded one by one so a single corrupt element does
// not take the whole document down with it.
func Load(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &LoadResult{Doc: Empty()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading feed: %w", err)
	}

	var envelope struct {
		Version   int               `json:"version"`
		UpdatedAt string            `json:"updatedAt"`
		Items     []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	doc := &FeedDocument{
		Version:   envelope.Version,
		UpdatedAt: envelope.UpdatedAt,
		Items:     make([]CompetitionRecord, 0, len(envelope.Items)),
	}
	if doc.Version == 0 {
		doc.Version = SchemaVersion
	}

	skipped := 0
	for _, raw := range envelope.Items {
		var rec CompetitionRecord
		if err := json.Unmarshal(raw, &rec); err != nil || rec.ID == "" {
			skipped++
			continue
		}
		doc.Items = append(doc.Items, rec)
	}
	if skipped > 0 {
		log.Printf("Skipped %d malformed feed items while loading %s", skipped, path)
	}

	return &LoadResult{Doc: doc, Skipped: skipped, Existed: true}, nil
}

// Write atomically replaces the feed at path with doc. The document is
// staged in a temp file in the same directory and renamed into place, so a
// reader never observes a partial write and the old feed survives any
// failure.
func Write(path string, doc *FeedDocument) error {
	data, err := Marshal(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating feed directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".feed-*.json")
	if err != nil {
		return fmt.Errorf("staging feed: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing feed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing feed: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing feed: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing feed: %w", err)
	}
	return nil
}

// Marshal renders doc as indented JSON. HTML escaping is disabled so CJK
// text and URLs stay readable in the artifact.
func Marshal(doc *FeedDocument) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding feed: %w", err)
	}
	return buf.Bytes(), nil
}
