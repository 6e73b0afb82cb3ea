// Package corpus loads the course and discourse record sets produced by the
// scraper. Each input is a JSONL file with one record per line.
package corpus

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Source tags which corpus a record came from.
type Source string

const (
	SourceCourse    Source = "course"
	SourceDiscourse Source = "discourse"
)

// maxLineSize bounds a single JSONL line; forum threads can be long.
const maxLineSize = 10 * 1024 * 1024

// Record is one passage of course or forum text. Its identity is its position
// within the corpus slice.
type Record struct {
	Content string `json:"content"`
	URL     string `json:"url,omitempty"`
	Source  Source `json:"-"`
}

// Corpora holds both record sets. It is never mutated after Load returns.
type Corpora struct {
	Course    []Record
	Discourse []Record
}

// Total returns the combined record count.
func (c Corpora) Total() int {
	return len(c.Course) + len(c.Discourse)
}

// Texts returns the contents of records in positional order.
func Texts(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Content
	}
	return out
}

// Load reads both corpora. A missing or unreadable file yields an empty
// corpus for that side; Load itself never fails.
func Load(ctx context.Context, coursePath, discoursePath string) Corpora {
	return Corpora{
		Course:    loadOrEmpty(ctx, coursePath, SourceCourse),
		Discourse: loadOrEmpty(ctx, discoursePath, SourceDiscourse),
	}
}

func loadOrEmpty(ctx context.Context, path string, src Source) []Record {
	records, err := ReadFile(ctx, path, src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.WarnContext(ctx, "corpus file not found", "source", src, "path", path)
		} else {
			slog.WarnContext(ctx, "failed to read corpus file", "source", src, "path", path, "error", err)
		}
		return []Record{}
	}
	slog.InfoContext(ctx, "corpus loaded", "source", src, "path", path, "records", len(records))
	return records
}

// ReadFile parses a JSONL corpus file.
func ReadFile(ctx context.Context, path string, src Source) ([]Record, error) {
	f, err := os.Open(path) // #nosec G304 -- path comes from service configuration
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(ctx, f, src)
}

// Read parses JSONL records from r. Blank lines are ignored and lines that are
// not JSON objects are skipped with a warning.
func Read(ctx context.Context, r io.Reader, src Source) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	records := []Record{}
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			slog.WarnContext(ctx, "skipping malformed corpus line", "source", src, "line", lineNo, "error", err)
			continue
		}
		rec.Source = src
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s corpus at line %d: %w", src, lineNo+1, err)
	}
	return records, nil
}
