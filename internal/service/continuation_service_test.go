package service_test

import (
	"context"
	"errors"
	"testing"

	"weave-server/internal/clients/weave"
	"weave-server/internal/models"
	repoMocks "weave-server/internal/repository/mocks"
	"weave-server/internal/service"
	serviceMocks "weave-server/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type continuationFixture struct {
	storyRepo   *repoMocks.StoryRepository
	chapterRepo *repoMocks.ChapterRepository
	client      *serviceMocks.GenerationClient
}

func newContinuationFixture() *continuationFixture {
	return &continuationFixture{
		storyRepo:   new(repoMocks.StoryRepository),
		chapterRepo: new(repoMocks.ChapterRepository),
		client:      new(serviceMocks.GenerationClient),
	}
}

func (f *continuationFixture) build(strict bool) service.ContinuationService {
	return service.NewContinuationService(f.storyRepo, f.chapterRepo, f.client, zap.NewNop(), strict)
}

func externalStory(authorID uuid.UUID) *models.Story {
	externalID := int64(42)
	return &models.Story{
		ID:              uuid.New(),
		Title:           "The Tower",
		AuthorID:        authorID,
		ExternalStoryID: &externalID,
	}
}

func latestChapter(storyID uuid.UUID, order int) *models.Chapter {
	return &models.Chapter{
		ID:      uuid.New(),
		StoryID: storyID,
		Order:   order,
		Content: "You stand before two doors.",
		Choices: []models.Choice{
			{ID: "choice1", Text: "Open the iron door"},
			{ID: "choice2", Text: "Open the oak door"},
		},
	}
}

func TestContinuationService_Continue(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("External continuation persists and reports external source", func(t *testing.T) {
		f := newContinuationFixture()
		story := externalStory(userID)
		current := latestChapter(story.ID, 3)

		f.storyRepo.On("GetByIDForAuthor", ctx, story.ID, userID).Return(story, nil).Once()
		f.chapterRepo.On("GetLatest", ctx, story.ID).Return(current, nil).Once()

		f.client.On("Continue", ctx, mock.MatchedBy(func(req weave.ContinueRequest) bool {
			assert.Equal(t, int64(42), req.StoryID)
			assert.Equal(t, "A", req.Choice)
			return true
		})).Return(&weave.ContinuationPayload{
			ChapterNum: 4,
			Content:    "The iron door creaks open.",
			Choices:    []string{"Step inside", "Turn back"},
		}, nil).Once()

		f.chapterRepo.On("AppendPaid", ctx, userID, mock.MatchedBy(func(ch *models.Chapter) bool {
			assert.Equal(t, 4, ch.Order)
			assert.Equal(t, "The iron door creaks open.", ch.Content)
			assert.True(t, ch.IsGenerated)
			return true
		}), "Chapter 4 generation").Return(nil).Once()

		result, err := f.build(false).Continue(ctx, userID, story.ID, service.ChoiceInput{Text: "Open the iron door"})

		assert.NoError(t, err)
		assert.Equal(t, 4, result.ChapterNum)
		assert.Equal(t, models.SourceExternal, result.Source)
		assert.Len(t, result.Choices, 2)
		f.storyRepo.AssertExpectations(t)
		f.chapterRepo.AssertExpectations(t)
		f.client.AssertExpectations(t)
	})

	t.Run("Upstream failure degrades to local fallback", func(t *testing.T) {
		f := newContinuationFixture()
		story := externalStory(userID)
		current := latestChapter(story.ID, 1)

		f.storyRepo.On("GetByIDForAuthor", ctx, story.ID, userID).Return(story, nil).Once()
		f.chapterRepo.On("GetLatest", ctx, story.ID).Return(current, nil).Once()
		f.client.On("Continue", ctx, mock.Anything).
			Return(nil, &weave.UpstreamError{StatusCode: 503, Detail: "unavailable"}).Once()
		f.chapterRepo.On("AppendPaid", ctx, userID, mock.MatchedBy(func(ch *models.Chapter) bool {
			assert.Equal(t, 2, ch.Order)
			assert.Contains(t, ch.Content, `"Open the oak door"`)
			assert.False(t, ch.IsGenerated)
			return true
		}), "Chapter 2 generation").Return(nil).Once()

		result, err := f.build(false).Continue(ctx, userID, story.ID, service.ChoiceInput{Text: "Open the oak door"})

		assert.NoError(t, err)
		assert.Equal(t, models.SourceLocal, result.Source)
		assert.Contains(t, result.Content, "Open the oak door")
		f.client.AssertExpectations(t)
	})

	t.Run("Story without external id never calls upstream", func(t *testing.T) {
		f := newContinuationFixture()
		story := &models.Story{ID: uuid.New(), AuthorID: userID}
		current := latestChapter(story.ID, 1)

		f.storyRepo.On("GetByIDForAuthor", ctx, story.ID, userID).Return(story, nil).Once()
		f.chapterRepo.On("GetLatest", ctx, story.ID).Return(current, nil).Once()
		f.chapterRepo.On("AppendPaid", ctx, userID, mock.Anything, "Chapter 2 generation").Return(nil).Once()

		result, err := f.build(false).Continue(ctx, userID, story.ID, service.ChoiceInput{Text: "A"})

		assert.NoError(t, err)
		assert.Equal(t, models.SourceLocal, result.Source)
		f.client.AssertNotCalled(t, "Continue", mock.Anything, mock.Anything)
	})

	t.Run("Missing or foreign story surfaces not found", func(t *testing.T) {
		f := newContinuationFixture()
		storyID := uuid.New()
		f.storyRepo.On("GetByIDForAuthor", ctx, storyID, userID).Return(nil, models.ErrNotFound).Once()

		result, err := f.build(false).Continue(ctx, userID, storyID, service.ChoiceInput{Text: "A"})

		assert.Nil(t, result)
		assert.True(t, errors.Is(err, models.ErrNotFound))
		f.chapterRepo.AssertNotCalled(t, "AppendPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Empty choice is a validation error", func(t *testing.T) {
		f := newContinuationFixture()

		result, err := f.build(false).Continue(ctx, userID, uuid.New(), service.ChoiceInput{})

		assert.Nil(t, result)
		assert.True(t, errors.Is(err, models.ErrValidation))
		f.storyRepo.AssertNotCalled(t, "GetByIDForAuthor", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Strict mode rejects unmatched text before generation", func(t *testing.T) {
		f := newContinuationFixture()
		story := externalStory(userID)
		current := latestChapter(story.ID, 1)

		f.storyRepo.On("GetByIDForAuthor", ctx, story.ID, userID).Return(story, nil).Once()
		f.chapterRepo.On("GetLatest", ctx, story.ID).Return(current, nil).Once()

		result, err := f.build(true).Continue(ctx, userID, story.ID, service.ChoiceInput{Text: "I fly away"})

		assert.Nil(t, result)
		assert.True(t, errors.Is(err, models.ErrValidation))
		f.client.AssertNotCalled(t, "Continue", mock.Anything, mock.Anything)
		f.chapterRepo.AssertNotCalled(t, "AppendPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Insufficient credits abort without retry", func(t *testing.T) {
		f := newContinuationFixture()
		story := &models.Story{ID: uuid.New(), AuthorID: userID}
		current := latestChapter(story.ID, 1)

		f.storyRepo.On("GetByIDForAuthor", ctx, story.ID, userID).Return(story, nil).Once()
		f.chapterRepo.On("GetLatest", ctx, story.ID).Return(current, nil).Once()
		f.chapterRepo.On("AppendPaid", ctx, userID, mock.Anything, mock.Anything).
			Return(models.ErrInsufficientCredits).Once()

		result, err := f.build(false).Continue(ctx, userID, story.ID, service.ChoiceInput{Text: "A"})

		assert.Nil(t, result)
		assert.True(t, errors.Is(err, models.ErrInsufficientCredits))
		f.chapterRepo.AssertExpectations(t)
	})

	t.Run("Order conflict retries once after the new maximum", func(t *testing.T) {
		f := newContinuationFixture()
		story := &models.Story{ID: uuid.New(), AuthorID: userID}
		current := latestChapter(story.ID, 2)

		f.storyRepo.On("GetByIDForAuthor", ctx, story.ID, userID).Return(story, nil).Once()
		f.chapterRepo.On("GetLatest", ctx, story.ID).Return(current, nil).Once()
		// A concurrent writer claimed order 3; retry reads the new max.
		f.chapterRepo.On("AppendPaid", ctx, userID, mock.MatchedBy(func(ch *models.Chapter) bool {
			return ch.Order == 3
		}), "Chapter 3 generation").Return(models.ErrConflict).Once()
		f.chapterRepo.On("GetLatest", ctx, story.ID).Return(latestChapter(story.ID, 3), nil).Once()
		f.chapterRepo.On("AppendPaid", ctx, userID, mock.MatchedBy(func(ch *models.Chapter) bool {
			return ch.Order == 4
		}), "Chapter 4 generation").Return(nil).Once()

		result, err := f.build(false).Continue(ctx, userID, story.ID, service.ChoiceInput{Text: "A"})

		assert.NoError(t, err)
		assert.Equal(t, 4, result.ChapterNum)
		f.chapterRepo.AssertExpectations(t)
	})

	t.Run("Conflict on the retry propagates", func(t *testing.T) {
		f := newContinuationFixture()
		story := &models.Story{ID: uuid.New(), AuthorID: userID}
		current := latestChapter(story.ID, 1)

		f.storyRepo.On("GetByIDForAuthor", ctx, story.ID, userID).Return(story, nil).Once()
		f.chapterRepo.On("GetLatest", ctx, story.ID).Return(current, nil).Once()
		f.chapterRepo.On("AppendPaid", ctx, userID, mock.Anything, mock.Anything).
			Return(models.ErrConflict).Once()
		f.chapterRepo.On("GetLatest", ctx, story.ID).Return(latestChapter(story.ID, 2), nil).Once()
		f.chapterRepo.On("AppendPaid", ctx, userID, mock.Anything, mock.Anything).
			Return(models.ErrConflict).Once()

		result, err := f.build(false).Continue(ctx, userID, story.ID, service.ChoiceInput{Text: "A"})

		assert.Nil(t, result)
		assert.True(t, errors.Is(err, models.ErrConflict))
		f.chapterRepo.AssertExpectations(t)
	})
}
