// Package jsonl reads a document corpus from a JSON Lines file, one
// document object per line:
//
//	{"id": 42, "text": "...", "payload": {"title": "..."}}
package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fuzalab/fuza/internal/domain"
	"github.com/fuzalab/fuza/internal/domain/document"
)

// maxLineSize bounds a single JSONL line (matches document.MaxTextSize plus
// headroom for payload fields).
const maxLineSize = 1 << 20

// Source reads documents from a JSONL file.
type Source struct {
	path string
}

// New creates a JSONL source for the given file path.
func New(path string) *Source {
	return &Source{path: path}
}

type docLine struct {
	ID      int64             `json:"id"`
	Text    string            `json:"text"`
	Payload map[string]string `json:"payload,omitempty"`
}

// Load reads the whole corpus in file order. Any read or decode failure is a
// source failure: there is no partial-source recovery.
func (s *Source) Load(ctx context.Context) ([]document.Document, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %w", s.path, domain.ErrSourceUnavailable, err)
	}
	defer f.Close()

	var docs []document.Document
	seen := make(map[int64]bool)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("read %s: %w: %w", s.path, domain.ErrSourceUnavailable, err)
		}

		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var dl docLine
		if err := json.Unmarshal(line, &dl); err != nil {
			return nil, fmt.Errorf("%s line %d: %w: %w", s.path, lineNo, domain.ErrSourceUnavailable, err)
		}

		doc, err := document.New(dl.ID, dl.Text, dl.Payload)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w: %w", s.path, lineNo, domain.ErrSourceUnavailable, err)
		}

		if seen[doc.ID()] {
			return nil, fmt.Errorf("%s line %d: duplicate document id %d: %w",
				s.path, lineNo, doc.ID(), domain.ErrSourceUnavailable)
		}
		seen[doc.ID()] = true

		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w: %w", s.path, domain.ErrSourceUnavailable, err)
	}

	return docs, nil
}
