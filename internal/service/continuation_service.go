package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"weave-server/internal/clients/weave"
	"weave-server/internal/models"
	"weave-server/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContinuationResult is the normalized chapter payload returned to clients,
// annotated with provenance so callers can distinguish external generation
// from the local fallback.
type ContinuationResult struct {
	ChapterID  uuid.UUID       `json:"id"`
	ChapterNum int             `json:"chapter_num"`
	Content    string          `json:"content"`
	Choices    []models.Choice `json:"choices"`
	Source     string          `json:"source"`
}

// ContinuationService advances a story by one chapter from a user choice.
type ContinuationService interface {
	Continue(ctx context.Context, userID, storyID uuid.UUID, choice ChoiceInput) (*ContinuationResult, error)
}

// Compile-time check
var _ ContinuationService = (*continuationServiceImpl)(nil)

type continuationServiceImpl struct {
	storyRepo   repository.StoryRepository
	chapterRepo repository.ChapterRepository
	client      GenerationClient
	logger      *zap.Logger
	strict      bool
}

func NewContinuationService(
	storyRepo repository.StoryRepository,
	chapterRepo repository.ChapterRepository,
	client GenerationClient,
	logger *zap.Logger,
	strictChoices bool,
) ContinuationService {
	return &continuationServiceImpl{
		storyRepo:   storyRepo,
		chapterRepo: chapterRepo,
		client:      client,
		logger:      logger.Named("ContinuationService"),
		strict:      strictChoices,
	}
}

// Continue resolves the persisted continuation point, normalizes the choice
// against it, generates the next chapter (external first, deterministic
// local fallback otherwise) and persists it together with the credit
// deduction. The new chapter is always appended after the persisted maximum
// order, regardless of what the client is currently displaying.
func (s *continuationServiceImpl) Continue(ctx context.Context, userID, storyID uuid.UUID, choice ChoiceInput) (*ContinuationResult, error) {
	if choice.IsZero() {
		return nil, fmt.Errorf("%w: choice is required", models.ErrValidation)
	}

	logFields := []zap.Field{
		zap.String("storyID", storyID.String()),
		zap.String("userID", userID.String()),
	}

	story, err := s.storyRepo.GetByIDForAuthor(ctx, storyID, userID)
	if err != nil {
		return nil, err
	}

	current, err := s.chapterRepo.GetLatest(ctx, story.ID)
	if err != nil {
		return nil, err
	}

	// The lookup context is the chapter about to be superseded, never a
	// later one.
	label, selected, err := NormalizeChoice(choice, current.Choices, s.strict)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	content, choices, generated, source := s.generateNext(ctx, story, label, selected, logFields)

	chapter := &models.Chapter{
		ID:          uuid.New(),
		StoryID:     story.ID,
		Order:       current.Order + 1,
		Content:     content,
		Choices:     choices,
		IsGenerated: generated,
		PromptUsed:  fmt.Sprintf("Continue story based on choice: %s", selected),
		CreatedAt:   time.Now().UTC(),
	}

	description := fmt.Sprintf("Chapter %d generation", chapter.Order)
	err = s.chapterRepo.AppendPaid(ctx, userID, chapter, description)
	if errors.Is(err, models.ErrConflict) {
		// A concurrent continuation won the order race. Retry once after
		// the persisted maximum.
		s.logger.Warn("Chapter order conflict, retrying once", logFields...)
		latest, latestErr := s.chapterRepo.GetLatest(ctx, story.ID)
		if latestErr != nil {
			return nil, latestErr
		}
		chapter.ID = uuid.New()
		chapter.Order = latest.Order + 1
		chapter.CreatedAt = time.Now().UTC()
		description = fmt.Sprintf("Chapter %d generation", chapter.Order)
		err = s.chapterRepo.AppendPaid(ctx, userID, chapter, description)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Story continued",
		append(logFields, zap.Int("order", chapter.Order), zap.String("source", source))...)

	return &ContinuationResult{
		ChapterID:  chapter.ID,
		ChapterNum: chapter.Order,
		Content:    chapter.Content,
		Choices:    chapter.Choices,
		Source:     source,
	}, nil
}

// generateNext asks the external service for the next chapter when the story
// has a correlation id. Any upstream failure degrades to the deterministic
// local generator; it never propagates.
func (s *continuationServiceImpl) generateNext(ctx context.Context, story *models.Story, label, selected string, logFields []zap.Field) (content string, choices []models.Choice, generated bool, source string) {
	if story.ExternalStoryID != nil {
		payload, err := s.client.Continue(ctx, weave.ContinueRequest{
			UserID:  story.AuthorID.String(),
			StoryID: *story.ExternalStoryID,
			Choice:  label,
		})
		if err == nil {
			return payload.Content, models.ChoicesFromTexts(payload.Choices), true, models.SourceExternal
		}
		s.logger.Warn("External continuation failed, using local fallback",
			append(logFields, zap.Error(err))...)
	} else {
		s.logger.Debug("Story has no external correlation id, using local fallback", logFields...)
	}

	return fallbackContinuationContent(selected), fallbackContinuationChoices(), false, models.SourceLocal
}
