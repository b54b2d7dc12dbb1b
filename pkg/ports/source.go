package ports

import (
	"context"

	"github.com/aretw0/rulecraft/pkg/domain"
)

// CategoryLister lists the canonical rule-category names available upstream.
// Only container (directory) entries count.
type CategoryLister interface {
	ListCategories(ctx context.Context) ([]string, error)
}

// TextFetcher fetches a remote text document.
// Failures are reported as *domain.FetchError.
type TextFetcher interface {
	FetchText(ctx context.Context, kind domain.FetchKind, url string) (string, error)
}
