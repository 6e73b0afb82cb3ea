package history

import (
	"time"

	"virtualta/internal/retrieval"
)

// Interaction is one answered question.
type Interaction struct {
	ID            string               `json:"id"`
	Question      string               `json:"question"`
	HasImage      bool                 `json:"has_image"`
	Answer        string               `json:"answer"`
	Links         []retrieval.Citation `json:"links"`
	CourseHits    int                  `json:"course_hits"`
	DiscourseHits int                  `json:"discourse_hits"`
	CorrelationID string               `json:"correlation_id"`
	CreatedAt     time.Time            `json:"created_at"`
}
