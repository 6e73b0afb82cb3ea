// Package index holds per-corpus vectors in memory and answers cosine
// similarity queries against them.
package index

import (
	"log/slog"
	"math"
	"sort"

	"virtualta/internal/corpus"
)

// Candidate is a record that matched a query.
type Candidate struct {
	Record     corpus.Record
	Similarity float64
	Source     corpus.Source
}

// Index is an immutable set of records and their vectors, aligned by position.
type Index struct {
	source  corpus.Source
	records []corpus.Record
	vectors [][]float32
}

// New builds an index. Misaligned input is logged and produces an empty index.
func New(source corpus.Source, records []corpus.Record, vectors [][]float32) *Index {
	if len(records) != len(vectors) {
		slog.Error("records and vectors misaligned, treating corpus as empty",
			"source", source, "records", len(records), "vectors", len(vectors))
		return &Index{source: source}
	}
	return &Index{source: source, records: records, vectors: vectors}
}

func (ix *Index) Source() corpus.Source { return ix.source }

func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.records)
}

// Search returns up to topK records scoring strictly above threshold, highest
// first. Equal scores keep corpus order.
func (ix *Index) Search(query []float32, topK int, threshold float64) []Candidate {
	if ix.Len() == 0 || topK <= 0 {
		return []Candidate{}
	}

	scores := make([]float64, len(ix.vectors))
	for i, v := range ix.vectors {
		scores[i] = Cosine(query, v)
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	if topK > len(order) {
		topK = len(order)
	}

	out := make([]Candidate, 0, topK)
	for _, idx := range order[:topK] {
		if scores[idx] <= threshold {
			continue
		}
		out = append(out, Candidate{
			Record:     ix.records[idx],
			Similarity: scores[idx],
			Source:     ix.source,
		})
	}
	return out
}

// Cosine is the cosine similarity of a and b. Zero-norm or differently sized
// vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
