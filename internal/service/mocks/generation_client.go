package mocks

import (
	"context"

	"weave-server/internal/clients/weave"

	"github.com/stretchr/testify/mock"
)

// Mock GenerationClient
type GenerationClient struct {
	mock.Mock
}

func (m *GenerationClient) Generate(ctx context.Context, req weave.GenerateRequest) (*weave.GenerateResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*weave.GenerateResponse)
	return resp, args.Error(1)
}

func (m *GenerationClient) Continue(ctx context.Context, req weave.ContinueRequest) (*weave.ContinuationPayload, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*weave.ContinuationPayload)
	return resp, args.Error(1)
}

func (m *GenerationClient) Genres(ctx context.Context) ([]weave.Genre, error) {
	args := m.Called(ctx)
	genres, _ := args.Get(0).([]weave.Genre)
	return genres, args.Error(1)
}

func (m *GenerationClient) Authors(ctx context.Context, genreID *int) ([]weave.Author, error) {
	args := m.Called(ctx, genreID)
	authors, _ := args.Get(0).([]weave.Author)
	return authors, args.Error(1)
}

func (m *GenerationClient) Suggestions(ctx context.Context, genre string) ([]weave.Suggestion, error) {
	args := m.Called(ctx, genre)
	suggestions, _ := args.Get(0).([]weave.Suggestion)
	return suggestions, args.Error(1)
}

func (m *GenerationClient) RegisterPreferences(ctx context.Context, req weave.RegisterRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
