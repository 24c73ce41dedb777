package storage

import (
	"context"
	"fmt"

	"reviewflow/internal/models"
)

type ReviewRepo struct {
	db *DB
}

func NewReviewRepo(db *DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

// ReplaceRunReviews swaps in the labeled rows for a run transactionally.
// Re-running inference for the same run never leaves rows from the earlier
// attempt behind.
func (r *ReviewRepo) ReplaceRunReviews(ctx context.Context, runID string, reviews []models.LabeledReview) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx labeled reviews: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM labeled_reviews WHERE run_id=$1`, runID); err != nil {
		return fmt.Errorf("clear labeled reviews: %w", err)
	}
	for _, rev := range reviews {
		_, err := tx.Exec(ctx, `
INSERT INTO labeled_reviews
  (run_id, user_id, homework, author, reviewer, round, feedback,
   relevance, concreteness, constructive,
   relevance_confidence, concreteness_confidence, constructive_confidence)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			runID, rev.UserID, rev.Homework, rev.Author, rev.Reviewer, rev.Round, rev.Feedback,
			rev.Relevance, rev.Concreteness, rev.Constructive,
			rev.RelevanceConfidence, rev.ConcretenessConfidence, rev.ConstructiveConfidence,
		)
		if err != nil {
			return fmt.Errorf("insert labeled review %s/%s: %w", rev.Homework, rev.Reviewer, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit labeled reviews tx: %w", err)
	}
	return nil
}

// CountRunReviews reports how many labeled rows a run persisted, broken
// down by homework.
func (r *ReviewRepo) CountRunReviews(ctx context.Context, runID string) (map[string]int, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT homework, COUNT(*) FROM labeled_reviews WHERE run_id=$1 GROUP BY homework`, runID)
	if err != nil {
		return nil, fmt.Errorf("count labeled reviews: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var hw string
		var n int
		if err := rows.Scan(&hw, &n); err != nil {
			return nil, fmt.Errorf("scan labeled review count: %w", err)
		}
		counts[hw] = n
	}
	return counts, rows.Err()
}
