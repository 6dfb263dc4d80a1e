package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jeffreymorganio/songza-commands-for-enso/internal/domain"
	"github.com/jeffreymorganio/songza-commands-for-enso/internal/feed"
	"github.com/jeffreymorganio/songza-commands-for-enso/internal/metrics"
	"github.com/jeffreymorganio/songza-commands-for-enso/internal/ports"
	"github.com/jeffreymorganio/songza-commands-for-enso/pkg/log"
)

// DefaultMaxFeedBytes caps how much of a feed body is read.
const DefaultMaxFeedBytes = 4 << 20

// FeedFetcher implements ports.FeedFetcher over HTTP GET.
type FeedFetcher struct {
	client   ports.HTTPClient
	logger   log.Logger
	metrics  *metrics.Metrics
	maxBytes int64
}

// NewFeedFetcher creates a fetcher. maxBytes <= 0 selects DefaultMaxFeedBytes.
func NewFeedFetcher(client ports.HTTPClient, logger log.Logger, m *metrics.Metrics, maxBytes int64) *FeedFetcher {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFeedBytes
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &FeedFetcher{
		client:   client,
		logger:   logger,
		metrics:  m,
		maxBytes: maxBytes,
	}
}

// FetchAndValidate fetches url once and parses it as a feed whose root must be
// expectedRoot. Every failure is logged with its cause and reported as !ok.
func (f *FeedFetcher) FetchAndValidate(ctx context.Context, url, expectedRoot string) (domain.FeedDocument, bool) {
	start := time.Now()
	doc, err := f.fetch(ctx, url, expectedRoot)
	took := time.Since(start)

	f.metrics.FetchCompleted(err, took)
	if err != nil {
		f.logger.Warn("feed unavailable",
			log.String("url", url),
			log.String("cause", metrics.Outcome(err)),
			log.Duration("took", took),
			log.Err(err),
		)
		return domain.FeedDocument{}, false
	}

	if doc.Skipped > 0 {
		f.metrics.EntriesSkipped(doc.Skipped)
		f.logger.Warn("skipped malformed song entries",
			log.String("url", url),
			log.Int("skipped", doc.Skipped),
		)
	}
	f.logger.Debug("feed fetched",
		log.String("url", url),
		log.Int("songs", len(doc.Songs)),
		log.Duration("took", took),
	)
	return doc, true
}

func (f *FeedFetcher) fetch(ctx context.Context, url, expectedRoot string) (domain.FeedDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.FeedDocument{}, fmt.Errorf("%w: create request: %v", domain.ErrFeedTransport, err)
	}
	req.Header.Set("Accept", "application/xml, text/xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return domain.FeedDocument{}, fmt.Errorf("%w: %v", domain.ErrFeedTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return domain.FeedDocument{}, fmt.Errorf("%w: %d", domain.ErrFeedStatus, resp.StatusCode)
	}

	// Read one byte past the cap to detect oversized bodies.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return domain.FeedDocument{}, fmt.Errorf("%w: read body: %v", domain.ErrFeedTransport, err)
	}
	if int64(len(body)) > f.maxBytes {
		return domain.FeedDocument{}, fmt.Errorf("%w: body exceeds %d bytes", domain.ErrFeedFormat, f.maxBytes)
	}

	doc, err := feed.Parse(body, expectedRoot)
	if err != nil {
		return domain.FeedDocument{}, err
	}
	return doc, nil
}

var _ ports.FeedFetcher = (*FeedFetcher)(nil)
