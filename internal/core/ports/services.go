package ports

import (
	"context"

	"moviehub/internal/core/domain"
)

type AccountService interface {
	CreateUser(ctx context.Context, name, email, password string) (domain.Profile, error)
	VerifyCredentials(ctx context.Context, email, password string) (domain.Profile, error)
}

// CatalogService validates a raw genre query and returns the provider's
// discover payload unchanged.
type CatalogService interface {
	DiscoverByGenre(ctx context.Context, rawGenre string) ([]byte, error)
}

// CatalogProvider performs the outbound discover request for an already
// validated genre id.
type CatalogProvider interface {
	DiscoverByGenre(ctx context.Context, genreID int) ([]byte, error)
}
