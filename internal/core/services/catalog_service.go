package services

import (
	"context"

	"moviehub/internal/core/domain"
	"moviehub/internal/core/ports"
	apperrors "moviehub/pkg/errors"
	"moviehub/pkg/tracing"
	"moviehub/pkg/validation"

	"go.uber.org/zap"
)

// User-facing catalog messages
const (
	MsgAPIKeyNotConfigured = "TMDB API key not configured"
	MsgGenreRequired       = "Genre parameter is required"
	MsgInvalidGenre        = "Invalid genre ID"
	MsgFetchFailed         = "Failed to fetch movies"
)

type catalogService struct {
	apiKey   string
	provider ports.CatalogProvider
	logger   *zap.SugaredLogger
}

// NewCatalogService returns the proxy front. apiKey is only checked for
// presence here; the provider client carries it on the wire.
func NewCatalogService(apiKey string, provider ports.CatalogProvider, logger *zap.SugaredLogger) ports.CatalogService {
	return &catalogService{
		apiKey:   apiKey,
		provider: provider,
		logger:   logger,
	}
}

// DiscoverByGenre checks, in order: credential, genre presence, genre
// allow-list. Only then is the provider called, exactly once.
func (s *catalogService) DiscoverByGenre(ctx context.Context, rawGenre string) ([]byte, error) {
	if s.apiKey == "" {
		s.logger.Errorw("catalog request rejected: provider credential missing")
		return nil, apperrors.NewConfigurationError(domain.ErrCatalogNotConfigured, MsgAPIKeyNotConfigured)
	}
	if rawGenre == "" {
		return nil, apperrors.NewValidationError(domain.ErrMissingGenre, MsgGenreRequired)
	}

	genreID, err := validation.ValidateGenreID(rawGenre, domain.IsAllowedGenre)
	if err != nil {
		return nil, apperrors.NewValidationError(domain.ErrInvalidGenre, MsgInvalidGenre).
			WithContext("genre", rawGenre)
	}

	genre, _ := domain.GenreByProviderID(genreID)
	tracing.AddSpanAttributes(ctx,
		tracing.GenreIDKey.Int(genreID),
		tracing.GenreKey.String(genre.Key),
	)

	body, err := s.provider.DiscoverByGenre(ctx, genreID)
	if err != nil {
		s.logger.Warnw("provider discover failed", "genre_id", genreID, "error", err)
		return nil, apperrors.NewUpstreamError(err, MsgFetchFailed).WithContext("genre_id", genreID)
	}

	return body, nil
}
