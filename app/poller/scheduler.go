package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/feedstash/feedstash/app/config"
	"github.com/feedstash/feedstash/app/database"
)

// Snapshotter refreshes an on-disk artifact after cycles that inserted rows.
type Snapshotter interface {
	WriteSnapshot() (int, error)
}

// Scheduler drives continuous polling: a ticker enqueues each enabled source
// when it comes due and a small worker pool runs the cycles. Stop lets
// in-flight cycles finish their store writes before returning.
type Scheduler struct {
	poller      *Poller
	feedRepo    database.FeedRepository
	sources     *config.Store
	snapshotter Snapshotter
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	jobQueue    chan config.Source
}

func NewScheduler(p *Poller, feedRepo database.FeedRepository, sources *config.Store,
	snapshotter Snapshotter, interval time.Duration, workerCount int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		poller:      p,
		feedRepo:    feedRepo,
		sources:     sources,
		snapshotter: snapshotter,
		interval:    interval,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		jobQueue:    make(chan config.Source, 100),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueDue()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueDue()
			}
		}
	}()

	slog.Info("Scheduler started", "workers", s.workerCount, "interval", s.interval)
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.jobQueue)
	slog.Info("Scheduler stopped")
}

func (s *Scheduler) enqueueDue() {
	sources := s.sources.GetEnabled()
	if len(sources) == 0 {
		slog.Debug("No enabled sources configured")
		return
	}

	now := time.Now().UTC()
	for _, source := range sources {
		dbFeed, err := s.feedRepo.GetFeed(source.Name)
		if err != nil {
			slog.Warn("Failed to load feed record, skipping", "feed", source.Name, "error", err)
			continue
		}
		if dbFeed == nil {
			slog.Warn("Feed not registered, skipping", "feed", source.Name)
			continue
		}

		if dbFeed.NextFetchAt != nil && dbFeed.NextFetchAt.After(now) {
			slog.Debug("Feed not due yet", "feed", source.Name, "next_fetch_at", dbFeed.NextFetchAt)
			continue
		}

		select {
		case s.jobQueue <- source:
		case <-s.ctx.Done():
			return
		default:
			slog.Warn("Job queue full, skipping source this tick", "feed", source.Name)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case source, ok := <-s.jobQueue:
			if !ok {
				return
			}

			result, err := s.poller.RunCycle(s.ctx, source)
			if err != nil {
				slog.Warn("Cycle failed", "worker_id", id, "feed", source.Name, "error", err)
				continue
			}

			if result.Inserted > 0 && s.snapshotter != nil {
				if written, err := s.snapshotter.WriteSnapshot(); err != nil {
					slog.Warn("Failed to refresh snapshot", "error", err)
				} else {
					slog.Debug("Snapshot refreshed", "rows", written)
				}
			}
		}
	}
}
