package service

import (
	"context"

	"weave-server/internal/clients/weave"
)

// GenerationClient is the surface of the external story-generation service
// used by the services. Implemented by clients/weave.Client.
type GenerationClient interface {
	Generate(ctx context.Context, req weave.GenerateRequest) (*weave.GenerateResponse, error)
	Continue(ctx context.Context, req weave.ContinueRequest) (*weave.ContinuationPayload, error)
	Genres(ctx context.Context) ([]weave.Genre, error)
	Authors(ctx context.Context, genreID *int) ([]weave.Author, error)
	Suggestions(ctx context.Context, genre string) ([]weave.Suggestion, error)
	RegisterPreferences(ctx context.Context, req weave.RegisterRequest) error
}
