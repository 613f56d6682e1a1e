// Package source loads the product collection from the product feed.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/httpclient"
)

// DefaultURL is the public product feed.
const DefaultURL = "https://equalexperts.github.io/frontend-take-home-test-data/products.json"

// Fetcher retrieves the full product collection.
type Fetcher interface {
	Fetch(ctx context.Context) ([]domain.Product, error)
}

// FetchFunc adapts a function to Fetcher.
type FetchFunc func(ctx context.Context) ([]domain.Product, error)

// Fetch calls f.
func (f FetchFunc) Fetch(ctx context.Context) ([]domain.Product, error) { return f(ctx) }

// HTTPFetcher GETs the product feed.
type HTTPFetcher struct {
	client *httpclient.Client
	url    string
}

// NewHTTPFetcher creates a fetcher for url.
func NewHTTPFetcher(client *httpclient.Client, url string) *HTTPFetcher {
	return &HTTPFetcher{client: client, url: url}
}

// Fetch downloads and decodes the feed. Non-2xx responses fail with
// "failed to fetch products: <status>".
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	err := f.client.GetJSON(ctx, f.url, &products)

	var statusErr *httpclient.StatusError
	switch {
	case err == nil:
		return products, nil
	case errors.As(err, &statusErr):
		return nil, fmt.Errorf("failed to fetch products: %s", statusErr.Status)
	case errors.Is(err, httpclient.ErrDecode):
		return nil, fmt.Errorf("decode products: %w", err)
	default:
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
}

var _ Fetcher = (*HTTPFetcher)(nil)
