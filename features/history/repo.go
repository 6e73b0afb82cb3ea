package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"virtualta/internal/retrieval"
)

type Repository interface {
	Save(ctx context.Context, in *Interaction) error
	List(ctx context.Context, limit int) ([]Interaction, error)
	Count(ctx context.Context) (int, error)
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Save(ctx context.Context, in *Interaction) error {
	links := in.Links
	if links == nil {
		links = []retrieval.Citation{}
	}
	linksJSON, err := json.Marshal(links)
	if err != nil {
		return fmt.Errorf("failed to encode links: %w", err)
	}

	query := `INSERT INTO interactions (id, question, has_image, answer, links, course_hits, discourse_hits, correlation_id) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING created_at`
	return r.db.QueryRowContext(ctx, query,
		in.ID, in.Question, in.HasImage, in.Answer, linksJSON, in.CourseHits, in.DiscourseHits, in.CorrelationID,
	).Scan(&in.CreatedAt)
}

func (r *PostgresRepo) List(ctx context.Context, limit int) ([]Interaction, error) {
	query := `SELECT id, question, has_image, answer, links, course_hits, discourse_hits, correlation_id, created_at FROM interactions ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Interaction
	for rows.Next() {
		var in Interaction
		var links []byte
		if err := rows.Scan(&in.ID, &in.Question, &in.HasImage, &in.Answer, &links, &in.CourseHits, &in.DiscourseHits, &in.CorrelationID, &in.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(links, &in.Links); err != nil {
			return nil, fmt.Errorf("failed to decode links for %s: %w", in.ID, err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM interactions`).Scan(&count)
	return count, err
}
