package ports

import (
	"context"

	"github.com/jeffreymorganio/songza-commands-for-enso/internal/domain"
)

// FeedFetcher retrieves and validates one feed document.
type FeedFetcher interface {
	// FetchAndValidate performs exactly one fetch of url. ok is false when the
	// fetch failed, the body was not XML, or its root element differs from
	// expectedRoot; the returned document is then the zero value.
	FetchAndValidate(ctx context.Context, url, expectedRoot string) (doc domain.FeedDocument, ok bool)
}
