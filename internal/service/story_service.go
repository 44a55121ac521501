package service

import (
	"context"
	"fmt"
	"time"

	"weave-server/internal/clients/weave"
	"weave-server/internal/models"
	"weave-server/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateStoryParams are the inputs of POST /api/stories.
type CreateStoryParams struct {
	Title         string
	Description   string
	IsPublic      bool
	InitialPrompt string
}

// GeneratedStory is the result of a genre-driven generation, mirroring the
// external service's story shape plus provenance.
type GeneratedStory struct {
	StoryID         uuid.UUID              `json:"story_id"`
	Title           string                 `json:"title"`
	Genre           string                 `json:"genre"`
	Chapters        []weave.ChapterPayload `json:"chapters"`
	CurrentChapter  int                    `json:"current_chapter"`
	ExternalStoryID *int64                 `json:"external_story_id,omitempty"`
	Source          string                 `json:"source"`
}

// StoryService creates stories and exposes read access to them.
type StoryService interface {
	CreateStory(ctx context.Context, userID uuid.UUID, params CreateStoryParams) (*models.Story, *models.Chapter, error)
	GenerateStory(ctx context.Context, userID uuid.UUID, genre, customPrompt string) (*GeneratedStory, error)
	ListChapters(ctx context.Context, storyID uuid.UUID) ([]models.Chapter, error)
	ListPublic(ctx context.Context, limit, offset int) ([]models.Story, int, error)
}

// Compile-time check
var _ StoryService = (*storyServiceImpl)(nil)

type storyServiceImpl struct {
	storyRepo   repository.StoryRepository
	chapterRepo repository.ChapterRepository
	client      GenerationClient
	logger      *zap.Logger
}

func NewStoryService(
	storyRepo repository.StoryRepository,
	chapterRepo repository.ChapterRepository,
	client GenerationClient,
	logger *zap.Logger,
) StoryService {
	return &storyServiceImpl{
		storyRepo:   storyRepo,
		chapterRepo: chapterRepo,
		client:      client,
		logger:      logger.Named("StoryService"),
	}
}

// CreateStory creates a story and its deterministic first chapter in one
// transaction.
func (s *storyServiceImpl) CreateStory(ctx context.Context, userID uuid.UUID, params CreateStoryParams) (*models.Story, *models.Chapter, error) {
	if params.Title == "" || params.InitialPrompt == "" {
		return nil, nil, fmt.Errorf("%w: title and initial prompt are required", models.ErrValidation)
	}

	now := time.Now().UTC()
	story := &models.Story{
		ID:          uuid.New(),
		Title:       params.Title,
		Description: params.Description,
		AuthorID:    userID,
		IsPublic:    params.IsPublic,
		Tags:        []string{},
		CreatedAt:   now,
	}
	chapter := &models.Chapter{
		ID:          uuid.New(),
		StoryID:     story.ID,
		Order:       1,
		Content:     fallbackFirstChapterContent(params.InitialPrompt),
		Choices:     fallbackFirstChoices(),
		IsGenerated: true,
		PromptUsed:  params.InitialPrompt,
		CreatedAt:   now,
	}

	if err := s.storyRepo.CreateWithChapters(ctx, story, []*models.Chapter{chapter}); err != nil {
		return nil, nil, err
	}

	s.logger.Info("Story created",
		zap.String("storyID", story.ID.String()), zap.String("authorID", userID.String()))
	return story, chapter, nil
}

// GenerateStory asks the external service for a new story and persists it
// locally. When the upstream call fails (including the 30s timeout) the
// story is synthesized locally: one chapter, private, tagged with the genre.
func (s *storyServiceImpl) GenerateStory(ctx context.Context, userID uuid.UUID, genre, customPrompt string) (*GeneratedStory, error) {
	if genre == "" {
		return nil, fmt.Errorf("%w: genre is required", models.ErrValidation)
	}

	logFields := []zap.Field{zap.String("userID", userID.String()), zap.String("genre", genre)}

	external, err := s.client.Generate(ctx, weave.GenerateRequest{
		UserID:       userID.String(),
		Genre:        genre,
		CustomPrompt: customPrompt,
	})
	if err != nil {
		s.logger.Warn("External generation failed, creating local fallback story",
			append(logFields, zap.Error(err))...)
		return s.createFallbackStory(ctx, userID, genre, customPrompt)
	}

	now := time.Now().UTC()
	title := external.Title
	if title == "" {
		title = titleForGenre(genre)
	}
	description := customPrompt
	if description == "" {
		description = fmt.Sprintf("A %s story", genre)
	}
	promptUsed := customPrompt
	if promptUsed == "" {
		promptUsed = fmt.Sprintf("Generate a %s story", genre)
	}

	externalID := external.StoryID
	story := &models.Story{
		ID:              uuid.New(),
		Title:           title,
		Description:     description,
		AuthorID:        userID,
		ExternalStoryID: &externalID,
		IsPublic:        false,
		Tags:            []string{genre},
		CreatedAt:       now,
	}

	chapters := make([]*models.Chapter, 0, len(external.Chapters))
	payloads := make([]weave.ChapterPayload, 0, len(external.Chapters))
	for _, ec := range external.Chapters {
		chapters = append(chapters, &models.Chapter{
			ID:          uuid.New(),
			StoryID:     story.ID,
			Order:       ec.ChapterNum,
			Content:     ec.Content,
			Choices:     models.ChoicesFromTexts(ec.Choices),
			IsGenerated: true,
			PromptUsed:  promptUsed,
			CreatedAt:   now,
		})
		payloads = append(payloads, ec)
	}

	if err := s.storyRepo.CreateWithChapters(ctx, story, chapters); err != nil {
		return nil, err
	}

	s.logger.Info("Externally generated story persisted",
		append(logFields, zap.String("storyID", story.ID.String()), zap.Int64("externalStoryID", externalID))...)

	return &GeneratedStory{
		StoryID:         story.ID,
		Title:           story.Title,
		Genre:           genre,
		Chapters:        payloads,
		CurrentChapter:  external.CurrentChapter,
		ExternalStoryID: &externalID,
		Source:          models.SourceExternal,
	}, nil
}

func (s *storyServiceImpl) createFallbackStory(ctx context.Context, userID uuid.UUID, genre, customPrompt string) (*GeneratedStory, error) {
	now := time.Now().UTC()
	description := customPrompt
	if description == "" {
		description = fmt.Sprintf("A %s story", genre)
	}
	promptUsed := customPrompt
	if promptUsed == "" {
		promptUsed = fmt.Sprintf("Generate a %s story", genre)
	}

	story := &models.Story{
		ID:          uuid.New(),
		Title:       titleForGenre(genre),
		Description: description,
		AuthorID:    userID,
		IsPublic:    false,
		Tags:        []string{genre},
		CreatedAt:   now,
	}
	chapter := &models.Chapter{
		ID:          uuid.New(),
		StoryID:     story.ID,
		Order:       1,
		Content:     fallbackGenreChapterContent(genre, customPrompt),
		Choices:     fallbackFirstChoices(),
		IsGenerated: false,
		PromptUsed:  promptUsed,
		CreatedAt:   now,
	}

	if err := s.storyRepo.CreateWithChapters(ctx, story, []*models.Chapter{chapter}); err != nil {
		return nil, err
	}

	return &GeneratedStory{
		StoryID: story.ID,
		Title:   story.Title,
		Genre:   genre,
		Chapters: []weave.ChapterPayload{{
			ChapterNum: chapter.Order,
			Content:    chapter.Content,
			Choices:    chapter.ChoiceTexts(),
		}},
		CurrentChapter: 1,
		Source:         models.SourceLocal,
	}, nil
}

func (s *storyServiceImpl) ListChapters(ctx context.Context, storyID uuid.UUID) ([]models.Chapter, error) {
	return s.chapterRepo.ListByStory(ctx, storyID)
}

func (s *storyServiceImpl) ListPublic(ctx context.Context, limit, offset int) ([]models.Story, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 12
	}
	if offset < 0 {
		offset = 0
	}
	return s.storyRepo.ListPublic(ctx, limit, offset)
}
