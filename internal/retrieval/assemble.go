package retrieval

import (
	"sort"
	"strings"

	"virtualta/internal/corpus"
	"virtualta/internal/index"
)

const (
	CourseLinkLabel = "Course material"
	labelRunes      = 100
	labelEllipsis   = "..."
)

// Citation points an answer back at its source material.
type Citation struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// Assemble merges both candidate lists, keeps the topK best and renders them
// into the prompt context plus the citation list, in the same order.
func Assemble(course, discourse []index.Candidate, topK int) (string, []Citation) {
	merged := Merge(course, discourse, topK)

	parts := make([]string, 0, len(merged))
	links := make([]Citation, 0, len(merged))
	for _, c := range merged {
		switch c.Source {
		case corpus.SourceCourse:
			parts = append(parts, "Course Content: "+c.Record.Content)
			if c.Record.URL != "" {
				links = append(links, Citation{URL: c.Record.URL, Text: CourseLinkLabel})
			}
		default:
			parts = append(parts, "Discussion: "+c.Record.Content)
			if c.Record.URL != "" {
				links = append(links, Citation{URL: c.Record.URL, Text: discussionLabel(c.Record.Content)})
			}
		}
	}
	return strings.Join(parts, "\n\n"), links
}

// Merge concatenates course then discourse candidates, sorts by similarity
// (stable) and truncates to topK. topK <= 0 keeps everything.
func Merge(course, discourse []index.Candidate, topK int) []index.Candidate {
	merged := make([]index.Candidate, 0, len(course)+len(discourse))
	merged = append(merged, course...)
	merged = append(merged, discourse...)

	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Similarity > merged[j].Similarity })

	if topK > 0 && len(merged) > topK {
		merged = merged[:topK]
	}
	return merged
}

func discussionLabel(content string) string {
	r := []rune(content)
	if len(r) > labelRunes {
		r = r[:labelRunes]
	}
	return string(r) + labelEllipsis
}
