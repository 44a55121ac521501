package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"weave-server/internal/clients/weave"
	"weave-server/internal/service"
	serviceMocks "weave-server/internal/service/mocks"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestReferenceService_Genres(t *testing.T) {
	ctx := context.Background()

	t.Run("Upstream result is cached and served from cache afterwards", func(t *testing.T) {
		cache, _ := newTestCache(t)
		client := new(serviceMocks.GenerationClient)
		svc := service.NewReferenceService(client, cache, time.Minute, zap.NewNop())

		client.On("Genres", ctx).Return([]weave.Genre{{GenreID: 1, GenreName: "fantasy"}}, nil).Once()

		genres, source := svc.Genres(ctx)
		assert.Equal(t, "external", source)
		require.Len(t, genres, 1)
		assert.Equal(t, "fantasy", genres[0].GenreName)

		// Second lookup hits the cache, not the client.
		genres, source = svc.Genres(ctx)
		assert.Equal(t, "external", source)
		assert.Len(t, genres, 1)
		client.AssertNumberOfCalls(t, "Genres", 1)
	})

	t.Run("Upstream failure degrades to the local table", func(t *testing.T) {
		cache, _ := newTestCache(t)
		client := new(serviceMocks.GenerationClient)
		svc := service.NewReferenceService(client, cache, time.Minute, zap.NewNop())

		client.On("Genres", ctx).Return(nil, errors.New("connection refused"))

		genres, source := svc.Genres(ctx)
		assert.Equal(t, "local", source)
		assert.NotEmpty(t, genres)
	})

	t.Run("Corrupt cache entry is dropped and refetched", func(t *testing.T) {
		cache, mr := newTestCache(t)
		client := new(serviceMocks.GenerationClient)
		svc := service.NewReferenceService(client, cache, time.Minute, zap.NewNop())

		require.NoError(t, mr.Set("ref:genres", "{not json"))
		client.On("Genres", ctx).Return([]weave.Genre{{GenreID: 2, GenreName: "horror"}}, nil).Once()

		genres, source := svc.Genres(ctx)
		assert.Equal(t, "external", source)
		require.Len(t, genres, 1)
		assert.Equal(t, "horror", genres[0].GenreName)
	})

	t.Run("Works without a cache at all", func(t *testing.T) {
		client := new(serviceMocks.GenerationClient)
		svc := service.NewReferenceService(client, nil, time.Minute, zap.NewNop())

		client.On("Genres", ctx).Return(nil, errors.New("down"))

		genres, source := svc.Genres(ctx)
		assert.Equal(t, "local", source)
		assert.NotEmpty(t, genres)
	})
}

func TestReferenceService_Authors(t *testing.T) {
	ctx := context.Background()

	t.Run("Genre filter is part of the cache key", func(t *testing.T) {
		cache, mr := newTestCache(t)
		client := new(serviceMocks.GenerationClient)
		svc := service.NewReferenceService(client, cache, time.Minute, zap.NewNop())

		genreID := 3
		client.On("Authors", ctx, &genreID).Return([]weave.Author{{AuthorID: 9, AuthorName: "M. Vane"}}, nil).Once()

		authors, source := svc.Authors(ctx, &genreID)
		assert.Equal(t, "external", source)
		require.Len(t, authors, 1)
		assert.True(t, mr.Exists("ref:authors:3"))
		assert.False(t, mr.Exists("ref:authors:all"))
	})

	t.Run("Empty upstream answer falls back locally", func(t *testing.T) {
		cache, _ := newTestCache(t)
		client := new(serviceMocks.GenerationClient)
		svc := service.NewReferenceService(client, cache, time.Minute, zap.NewNop())

		client.On("Authors", ctx, (*int)(nil)).Return([]weave.Author{}, nil)

		authors, source := svc.Authors(ctx, nil)
		assert.Equal(t, "local", source)
		assert.NotEmpty(t, authors)
	})
}

func TestReferenceService_Suggestions(t *testing.T) {
	ctx := context.Background()

	t.Run("Matching genre block is cached", func(t *testing.T) {
		cache, mr := newTestCache(t)
		client := new(serviceMocks.GenerationClient)
		svc := service.NewReferenceService(client, cache, time.Minute, zap.NewNop())

		client.On("Suggestions", ctx, "fantasy").Return([]weave.Suggestion{
			{Genre: "Fantasy", Prompts: []string{"A dragon sleeps beneath the city."}},
		}, nil).Once()

		prompts, source := svc.Suggestions(ctx, "Fantasy")
		assert.Equal(t, "external", source)
		require.Len(t, prompts, 1)
		assert.True(t, mr.Exists("ref:suggestions:fantasy"))
	})

	t.Run("Unknown genre falls back to the default table", func(t *testing.T) {
		client := new(serviceMocks.GenerationClient)
		svc := service.NewReferenceService(client, nil, time.Minute, zap.NewNop())

		client.On("Suggestions", ctx, mock.Anything).Return(nil, errors.New("down"))

		prompts, source := svc.Suggestions(ctx, "underwater-basket-weaving")
		assert.Equal(t, "local", source)
		assert.NotEmpty(t, prompts)
	})
}
