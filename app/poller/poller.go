package poller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/feedstash/feedstash/app/config"
	"github.com/feedstash/feedstash/app/database"
	"github.com/feedstash/feedstash/app/feed"
)

// consecutive store failures per source before log escalation
const storeFailureThreshold = 3

// CycleResult reports the outcome of one fetch-parse-dedup-persist pass.
type CycleResult struct {
	FeedName string
	Fetched  int
	Inserted int
	Skipped  int
	Failed   int
}

type Poller struct {
	httpClient *http.Client
	parser     *feed.Parser
	resolver   *feed.Resolver
	feedRepo   database.FeedRepository
	itemRepo   database.ItemRepository

	userAgent       string
	fetchTimeout    time.Duration
	defaultInterval time.Duration

	mu            sync.Mutex
	storeFailures map[string]int
}

func NewPoller(httpClient *http.Client, parser *feed.Parser, resolver *feed.Resolver,
	feedRepo database.FeedRepository, itemRepo database.ItemRepository,
	userAgent string, fetchTimeout, defaultInterval time.Duration) *Poller {
	return &Poller{
		httpClient:      httpClient,
		parser:          parser,
		resolver:        resolver,
		feedRepo:        feedRepo,
		itemRepo:        itemRepo,
		userAgent:       userAgent,
		fetchTimeout:    fetchTimeout,
		defaultInterval: defaultInterval,
		storeFailures:   make(map[string]int),
	}
}

// RunCycle executes one complete pass against a source. A transport or parse
// failure fails the whole cycle and leaves the store untouched; a resolution
// failure skips only that entry. Inserts already issued stand if the context
// is cancelled mid-batch. The returned error is always one of the typed
// errors from this package, the feed package, or the database package.
func (p *Poller) RunCycle(ctx context.Context, source config.Source) (CycleResult, error) {
	result := CycleResult{FeedName: source.Name}
	startedAt := time.Now()
	fetchedAt := startedAt.UTC()

	data, err := p.fetchFeed(ctx, source.URL)
	if err != nil {
		p.finishCycle(source, fetchedAt)
		return result, err
	}

	metadata, items, err := p.parser.Run(data)
	if err != nil {
		p.finishCycle(source, fetchedAt)
		return result, err
	}
	result.Fetched = len(items)

	if err := p.feedRepo.UpdateFeedMetadata(source.Name, metadata.Title, metadata.Link, metadata.Description); err != nil {
		p.recordStoreFailure(source.Name, err)
		return result, err
	}

	for _, item := range items {
		// A cancellation mid-batch abandons remaining work; each insert is
		// individually atomic, so what has been written stays consistent.
		if ctx.Err() != nil {
			slog.Warn("Cycle interrupted, abandoning remaining entries",
				"feed", source.Name, "remaining", result.Fetched-result.Inserted-result.Skipped-result.Failed)
			break
		}

		guid, err := p.resolver.Run(item)
		if err != nil {
			result.Failed++
			slog.Warn("Entry has no usable identity, skipping", "feed", source.Name, "error", err)
			continue
		}

		inserted, err := p.itemRepo.InsertIfAbsent(database.Item{
			FeedName:    source.Name,
			GUID:        guid,
			Title:       item.Title,
			Link:        item.Link,
			Summary:     item.Summary,
			PublishedAt: item.PublishedAt,
			FetchedAt:   fetchedAt,
		})
		if err != nil {
			p.recordStoreFailure(source.Name, err)
			return result, err
		}

		if inserted {
			result.Inserted++
		} else {
			result.Skipped++
		}
	}

	p.resetStoreFailures(source.Name)
	p.finishCycle(source, fetchedAt)

	slog.Info("Cycle completed",
		"feed", source.Name,
		"type", string(metadata.Type),
		"duration", time.Since(startedAt),
		"fetched", result.Fetched,
		"inserted", result.Inserted,
		"skipped", result.Skipped,
		"failed", result.Failed)

	return result, nil
}

// RunAll polls every source once, sequentially. Used by single-shot mode.
// Failed cycles are logged and do not stop the remaining sources.
func (p *Poller) RunAll(ctx context.Context, sources []config.Source) CycleResult {
	var total CycleResult
	for _, source := range sources {
		if ctx.Err() != nil {
			break
		}

		result, err := p.RunCycle(ctx, source)
		if err != nil {
			slog.Warn("Cycle failed", "feed", source.Name, "error", err)
		}

		total.Fetched += result.Fetched
		total.Inserted += result.Inserted
		total.Skipped += result.Skipped
		total.Failed += result.Failed
	}
	return total
}

// Interval returns the effective refresh interval for a source.
func (p *Poller) Interval(source config.Source) time.Duration {
	if source.RefreshInterval > 0 {
		return time.Duration(source.RefreshInterval) * time.Second
	}
	return p.defaultInterval
}

func (p *Poller) fetchFeed(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}

	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}

	if len(data) == 0 {
		return nil, &TransportError{URL: url, Err: errors.New("empty response body")}
	}

	return data, nil
}

// finishCycle advances the fetch bookkeeping so a failing feed still waits
// out its interval instead of being re-polled immediately.
func (p *Poller) finishCycle(source config.Source, fetchedAt time.Time) {
	nextFetch := fetchedAt.Add(p.Interval(source))
	if err := p.feedRepo.UpdateFetchTimes(source.Name, fetchedAt, nextFetch); err != nil {
		p.recordStoreFailure(source.Name, err)
	}
}

func (p *Poller) recordStoreFailure(feedName string, err error) {
	p.mu.Lock()
	p.storeFailures[feedName]++
	failures := p.storeFailures[feedName]
	p.mu.Unlock()

	if failures >= storeFailureThreshold {
		slog.Error("Store failing across consecutive cycles",
			"feed", feedName, "consecutive_failures", failures, "error", err)
	} else {
		slog.Warn("Store operation failed", "feed", feedName, "error", err)
	}
}

func (p *Poller) resetStoreFailures(feedName string) {
	p.mu.Lock()
	delete(p.storeFailures, feedName)
	p.mu.Unlock()
}
