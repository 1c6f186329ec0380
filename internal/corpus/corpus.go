// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus appends generated texts to the corpus file and, when
// enabled, one JSON line per text to the metadata sidecar.
//
// Each corpus record is a header line followed by the text and a blank line:
//
//	<!-- Story Metadata: {"story_id":"story_0001",...} -->
//	Once upon a time...
//
// Files are only ever appended to, so a reader can split the corpus on the
// header marker.
package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/corpusgen/pkg/types"
)

// HeaderPrefix and HeaderSuffix delimit the metadata comment that opens
// every corpus record.
const (
	HeaderPrefix = "<!-- Story Metadata: "
	HeaderSuffix = " -->"
)

// Writer appends records to a corpus file and an optional sidecar.
type Writer struct {
	// Path is the corpus file.
	Path string

	// MetadataPath is the JSONL sidecar. Empty disables it.
	MetadataPath string
}

// New returns a Writer for cfg. The sidecar is enabled by
// cfg.SaveDetailedMetadata.
func New(cfg types.Config) *Writer {
	w := &Writer{Path: cfg.OutputCorpusPath}
	if cfg.SaveDetailedMetadata {
		w.MetadataPath = cfg.MetadataPath
	}
	return w
}

// Append writes one record for text to the corpus and, if enabled, its
// metadata to the sidecar. Both files are synced before Append returns.
func (w *Writer) Append(text string, meta types.StoryMetadata) error {
	js, err := marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding story metadata: %w", err)
	}

	var rec bytes.Buffer
	rec.Grow(len(HeaderPrefix) + len(js) + len(HeaderSuffix) + len(text) + 3)
	rec.WriteString(HeaderPrefix)
	rec.Write(js)
	rec.WriteString(HeaderSuffix)
	rec.WriteByte('\n')
	rec.WriteString(text)
	rec.WriteString("\n\n")

	if err := appendFile(w.Path, rec.Bytes()); err != nil {
		return fmt.Errorf("appending to corpus: %w", err)
	}

	if w.MetadataPath == "" {
		return nil
	}
	if err := appendFile(w.MetadataPath, append(js, '\n')); err != nil {
		return fmt.Errorf("appending to metadata sidecar: %w", err)
	}
	return nil
}

// marshal encodes meta on one line without HTML escaping, so prompts keep
// their literal characters.
func marshal(meta types.StoryMetadata) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(meta); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func appendFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
