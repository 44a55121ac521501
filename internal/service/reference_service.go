package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"weave-server/internal/clients/weave"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ReferenceService serves genres, authors and prompt suggestions. Lookups
// try the external service first, cache successful answers in redis, and
// degrade to the local fallback tables on any upstream failure. A lookup
// therefore never fails; the source tag tells callers what they got.
type ReferenceService interface {
	Genres(ctx context.Context) ([]weave.Genre, string)
	Authors(ctx context.Context, genreID *int) ([]weave.Author, string)
	Suggestions(ctx context.Context, genre string) ([]string, string)
}

// Compile-time check
var _ ReferenceService = (*referenceServiceImpl)(nil)

type referenceServiceImpl struct {
	client GenerationClient
	cache  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewReferenceService(client GenerationClient, cache *redis.Client, ttl time.Duration, logger *zap.Logger) ReferenceService {
	return &referenceServiceImpl{
		client: client,
		cache:  cache,
		ttl:    ttl,
		logger: logger.Named("ReferenceService"),
	}
}

const (
	genresCacheKey      = "ref:genres"
	authorsCacheKeyFmt  = "ref:authors:%s"
	suggestionsCacheFmt = "ref:suggestions:%s"
)

func (s *referenceServiceImpl) Genres(ctx context.Context) ([]weave.Genre, string) {
	var cached []weave.Genre
	if s.readCache(ctx, genresCacheKey, &cached) {
		return cached, "external"
	}

	genres, err := s.client.Genres(ctx)
	if err == nil && len(genres) > 0 {
		s.writeCache(ctx, genresCacheKey, genres)
		return genres, "external"
	}
	if err != nil {
		s.logger.Warn("Genre lookup failed upstream, using local table", zap.Error(err))
	}
	return localGenres(), "local"
}

func (s *referenceServiceImpl) Authors(ctx context.Context, genreID *int) ([]weave.Author, string) {
	key := fmt.Sprintf(authorsCacheKeyFmt, genreKeyPart(genreID))
	var cached []weave.Author
	if s.readCache(ctx, key, &cached) {
		return cached, "external"
	}

	authors, err := s.client.Authors(ctx, genreID)
	if err == nil && len(authors) > 0 {
		s.writeCache(ctx, key, authors)
		return authors, "external"
	}
	if err != nil {
		s.logger.Warn("Author lookup failed upstream, using local table", zap.Error(err))
	}
	return localAuthors(genreID), "local"
}

func (s *referenceServiceImpl) Suggestions(ctx context.Context, genre string) ([]string, string) {
	genre = strings.ToLower(genre)
	key := fmt.Sprintf(suggestionsCacheFmt, genre)
	var cached []string
	if s.readCache(ctx, key, &cached) {
		return cached, "external"
	}

	suggestions, err := s.client.Suggestions(ctx, genre)
	if err == nil {
		for _, suggestion := range suggestions {
			if strings.EqualFold(suggestion.Genre, genre) && len(suggestion.Prompts) > 0 {
				s.writeCache(ctx, key, suggestion.Prompts)
				return suggestion.Prompts, "external"
			}
		}
	}
	if err != nil {
		s.logger.Warn("Suggestion lookup failed upstream, using local table",
			zap.String("genre", genre), zap.Error(err))
	}
	return localSuggestions(genre), "local"
}

func (s *referenceServiceImpl) readCache(ctx context.Context, key string, out interface{}) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.Warn("Corrupt cache entry, dropping", zap.String("key", key), zap.Error(err))
		s.cache.Del(ctx, key)
		return false
	}
	return true
}

func (s *referenceServiceImpl) writeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("Failed to write cache entry", zap.String("key", key), zap.Error(err))
	}
}

func genreKeyPart(genreID *int) string {
	if genreID == nil {
		return "all"
	}
	return fmt.Sprintf("%d", *genreID)
}
