package repository

import (
	"context"
	"errors"
	"fmt"

	"weave-server/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// uniqueViolationCode is the PostgreSQL error code for unique constraint
// violations.
const uniqueViolationCode = "23505"

// Compile-time check
var _ StoryRepository = (*pgStoryRepository)(nil)

type pgStoryRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPgStoryRepository(pool *pgxpool.Pool, logger *zap.Logger) StoryRepository {
	return &pgStoryRepository{
		pool:   pool,
		logger: logger.Named("PgStoryRepo"),
	}
}

const insertStoryQuery = `
    INSERT INTO stories (id, title, description, author_id, external_story_id, is_public, tags, created_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

const insertChapterQuery = `
    INSERT INTO chapters (id, story_id, chapter_order, content, choices, is_generated, prompt_used, created_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

// CreateWithChapters inserts the story and its initial chapters in one
// transaction; either everything becomes visible or nothing does.
func (r *pgStoryRepository) CreateWithChapters(ctx context.Context, story *models.Story, chapters []*models.Chapter) error {
	logFields := []zap.Field{
		zap.String("storyID", story.ID.String()),
		zap.String("authorID", story.AuthorID.String()),
		zap.Int("chapters", len(chapters)),
	}
	r.logger.Debug("Creating story with chapters", logFields...)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, insertStoryQuery,
		story.ID, story.Title, story.Description, story.AuthorID,
		story.ExternalStoryID, story.IsPublic, story.Tags, story.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert story", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to insert story: %w", err)
	}

	for _, chapter := range chapters {
		_, err = tx.Exec(ctx, insertChapterQuery,
			chapter.ID, chapter.StoryID, chapter.Order, chapter.Content,
			chapter.Choices, chapter.IsGenerated, chapter.PromptUsed, chapter.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to insert chapter",
				append(logFields, zap.Int("order", chapter.Order), zap.Error(err))...)
			return fmt.Errorf("failed to insert chapter %d: %w", chapter.Order, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit story creation: %w", err)
	}
	r.logger.Info("Story created", logFields...)
	return nil
}

const selectStoryColumns = `
    SELECT id, title, description, author_id, external_story_id, is_public, tags, created_at
    FROM stories
`

func (r *pgStoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	story := &models.Story{}
	err := r.pool.QueryRow(ctx, selectStoryColumns+` WHERE id = $1`, id).Scan(
		&story.ID, &story.Title, &story.Description, &story.AuthorID,
		&story.ExternalStoryID, &story.IsPublic, &story.Tags, &story.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get story", zap.String("storyID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get story %s: %w", id, err)
	}
	return story, nil
}

// GetByIDForAuthor does not distinguish "missing" from "owned by someone
// else" so that existence cannot be probed.
func (r *pgStoryRepository) GetByIDForAuthor(ctx context.Context, id, authorID uuid.UUID) (*models.Story, error) {
	story := &models.Story{}
	err := r.pool.QueryRow(ctx, selectStoryColumns+` WHERE id = $1 AND author_id = $2`, id, authorID).Scan(
		&story.ID, &story.Title, &story.Description, &story.AuthorID,
		&story.ExternalStoryID, &story.IsPublic, &story.Tags, &story.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn("Story not found for author",
				zap.String("storyID", id.String()), zap.String("authorID", authorID.String()))
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get story for author", zap.String("storyID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get story %s: %w", id, err)
	}
	return story, nil
}

func (r *pgStoryRepository) ListPublic(ctx context.Context, limit, offset int) ([]models.Story, int, error) {
	var stories []models.Story
	query := selectStoryColumns + `
        WHERE is_public = TRUE
        ORDER BY created_at DESC
        LIMIT $1 OFFSET $2
    `
	if err := pgxscan.Select(ctx, r.pool, &stories, query, limit, offset); err != nil {
		r.logger.Error("Failed to list public stories", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list public stories: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM stories WHERE is_public = TRUE`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count public stories: %w", err)
	}
	return stories, total, nil
}
