package mocks

import (
	"context"

	"weave-server/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock UserRepository
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

// Mock StoryRepository
type StoryRepository struct {
	mock.Mock
}

func (m *StoryRepository) CreateWithChapters(ctx context.Context, story *models.Story, chapters []*models.Chapter) error {
	args := m.Called(ctx, story, chapters)
	return args.Error(0)
}

func (m *StoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	args := m.Called(ctx, id)
	story, _ := args.Get(0).(*models.Story)
	return story, args.Error(1)
}

func (m *StoryRepository) GetByIDForAuthor(ctx context.Context, id, authorID uuid.UUID) (*models.Story, error) {
	args := m.Called(ctx, id, authorID)
	story, _ := args.Get(0).(*models.Story)
	return story, args.Error(1)
}

func (m *StoryRepository) ListPublic(ctx context.Context, limit, offset int) ([]models.Story, int, error) {
	args := m.Called(ctx, limit, offset)
	stories, _ := args.Get(0).([]models.Story)
	return stories, args.Int(1), args.Error(2)
}

// Mock ChapterRepository
type ChapterRepository struct {
	mock.Mock
}

func (m *ChapterRepository) AppendPaid(ctx context.Context, userID uuid.UUID, chapter *models.Chapter, description string) error {
	args := m.Called(ctx, userID, chapter, description)
	return args.Error(0)
}

func (m *ChapterRepository) GetLatest(ctx context.Context, storyID uuid.UUID) (*models.Chapter, error) {
	args := m.Called(ctx, storyID)
	chapter, _ := args.Get(0).(*models.Chapter)
	return chapter, args.Error(1)
}

func (m *ChapterRepository) ListByStory(ctx context.Context, storyID uuid.UUID) ([]models.Chapter, error) {
	args := m.Called(ctx, storyID)
	chapters, _ := args.Get(0).([]models.Chapter)
	return chapters, args.Error(1)
}
