package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"weave-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Compile-time check
var _ ChapterRepository = (*pgChapterRepository)(nil)

type pgChapterRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPgChapterRepository(pool *pgxpool.Pool, logger *zap.Logger) ChapterRepository {
	return &pgChapterRepository{
		pool:   pool,
		logger: logger.Named("PgChapterRepo"),
	}
}

// AppendPaid runs the credit deduction, ledger entry and chapter insert in a
// single transaction. Partial application would be a correctness violation,
// so any failure rolls back all three.
func (r *pgChapterRepository) AppendPaid(ctx context.Context, userID uuid.UUID, chapter *models.Chapter, description string) error {
	logFields := []zap.Field{
		zap.String("storyID", chapter.StoryID.String()),
		zap.String("userID", userID.String()),
		zap.Int("order", chapter.Order),
	}
	r.logger.Debug("Appending paid chapter", logFields...)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE users SET credits = credits - 1 WHERE id = $1 AND credits >= 1`, userID)
	if err != nil {
		r.logger.Error("Failed to deduct credit", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to deduct credit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Warn("Chapter append rejected: insufficient credits", logFields...)
		return models.ErrInsufficientCredits
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO credit_history (id, user_id, amount, kind, description, story_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New(), userID, -1, models.CreditSpent, description, chapter.StoryID, time.Now().UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to record credit history", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to record credit history: %w", err)
	}

	_, err = tx.Exec(ctx, insertChapterQuery,
		chapter.ID, chapter.StoryID, chapter.Order, chapter.Content,
		chapter.Choices, chapter.IsGenerated, chapter.PromptUsed, chapter.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			r.logger.Warn("Chapter order already taken", logFields...)
			return models.ErrConflict
		}
		r.logger.Error("Failed to insert chapter", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to insert chapter: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit chapter append: %w", err)
	}
	r.logger.Info("Chapter appended", logFields...)
	return nil
}

const selectChapterColumns = `
    SELECT id, story_id, chapter_order, content, choices, is_generated, prompt_used, created_at
    FROM chapters
`

func (r *pgChapterRepository) GetLatest(ctx context.Context, storyID uuid.UUID) (*models.Chapter, error) {
	query := selectChapterColumns + `
        WHERE story_id = $1
        ORDER BY chapter_order DESC
        LIMIT 1
    `
	chapter := &models.Chapter{}
	err := r.pool.QueryRow(ctx, query, storyID).Scan(
		&chapter.ID, &chapter.StoryID, &chapter.Order, &chapter.Content,
		&chapter.Choices, &chapter.IsGenerated, &chapter.PromptUsed, &chapter.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNoChapter
		}
		r.logger.Error("Failed to get latest chapter", zap.String("storyID", storyID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get latest chapter for story %s: %w", storyID, err)
	}
	return chapter, nil
}

func (r *pgChapterRepository) ListByStory(ctx context.Context, storyID uuid.UUID) ([]models.Chapter, error) {
	query := selectChapterColumns + `
        WHERE story_id = $1
        ORDER BY chapter_order ASC
    `
	rows, err := r.pool.Query(ctx, query, storyID)
	if err != nil {
		r.logger.Error("Failed to list chapters", zap.String("storyID", storyID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list chapters for story %s: %w", storyID, err)
	}
	defer rows.Close()

	var chapters []models.Chapter
	for rows.Next() {
		var chapter models.Chapter
		if err := rows.Scan(
			&chapter.ID, &chapter.StoryID, &chapter.Order, &chapter.Content,
			&chapter.Choices, &chapter.IsGenerated, &chapter.PromptUsed, &chapter.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chapter: %w", err)
		}
		chapters = append(chapters, chapter)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chapters: %w", err)
	}
	return chapters, nil
}
