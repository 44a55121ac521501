package repository

import (
	"context"

	"weave-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgxpool.Pool / pgx.Tx used by the repositories.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// UserRepository persists accounts and credit balances.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// StoryRepository persists stories. Chapter creation that belongs to story
// creation happens in the same transaction.
type StoryRepository interface {
	CreateWithChapters(ctx context.Context, story *models.Story, chapters []*models.Chapter) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error)
	// GetByIDForAuthor returns ErrNotFound both when the story does not
	// exist and when it belongs to another user.
	GetByIDForAuthor(ctx context.Context, id, authorID uuid.UUID) (*models.Story, error)
	ListPublic(ctx context.Context, limit, offset int) ([]models.Story, int, error)
}

// ChapterRepository persists chapters and enforces the per-story order
// uniqueness constraint.
type ChapterRepository interface {
	// AppendPaid deducts one credit, records the ledger entry and inserts
	// the chapter as one atomic unit. Returns ErrInsufficientCredits when
	// the balance is empty and ErrConflict when the chapter order is
	// already taken (a concurrent continuation won the race).
	AppendPaid(ctx context.Context, userID uuid.UUID, chapter *models.Chapter, description string) error
	GetLatest(ctx context.Context, storyID uuid.UUID) (*models.Chapter, error)
	ListByStory(ctx context.Context, storyID uuid.UUID) ([]models.Chapter, error)
}
