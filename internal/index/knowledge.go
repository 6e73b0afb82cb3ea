package index

import "virtualta/internal/corpus"

// KnowledgeBase is the read-only snapshot of both corpora built at startup.
// It is shared by all requests without locking.
type KnowledgeBase struct {
	Course    *Index
	Discourse *Index
}

func NewKnowledgeBase(c corpus.Corpora, courseVectors, discourseVectors [][]float32) *KnowledgeBase {
	return &KnowledgeBase{
		Course:    New(corpus.SourceCourse, c.Course, courseVectors),
		Discourse: New(corpus.SourceDiscourse, c.Discourse, discourseVectors),
	}
}

// Len is the number of searchable records across both corpora.
func (kb *KnowledgeBase) Len() int {
	if kb == nil {
		return 0
	}
	return kb.Course.Len() + kb.Discourse.Len()
}

func (kb *KnowledgeBase) Empty() bool { return kb.Len() == 0 }
