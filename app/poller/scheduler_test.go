package poller

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/feedstash/feedstash/app/config"
)

func TestSchedulerRunsDueCycles(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte(atomTwoEntries))
	}))
	defer server.Close()

	env := newTestEnv(t)
	p := newTestPoller(env)
	source := registerSource(t, env, server.URL)

	sources := config.NewStore()
	if err := sources.Add(source); err != nil {
		t.Fatal(err)
	}

	scheduler := NewScheduler(p, env.feedRepo, sources, nil, 50*time.Millisecond, 1)
	scheduler.Start()

	deadline := time.Now().Add(2 * time.Second)
	for requests.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	scheduler.Stop()

	if requests.Load() == 0 {
		t.Fatal("Expected at least one fetch")
	}

	count, err := env.itemRepo.GetItemCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("Expected 2 stored items, got: %d", count)
	}
}

func TestSchedulerHonorsNextFetch(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte(atomTwoEntries))
	}))
	defer server.Close()

	env := newTestEnv(t)
	p := newTestPoller(env)
	source := registerSource(t, env, server.URL)

	// Feed fetched moments ago with a long refresh interval: not due
	now := time.Now().UTC()
	if err := env.feedRepo.UpdateFetchTimes(source.Name, now, now.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	sources := config.NewStore()
	if err := sources.Add(source); err != nil {
		t.Fatal(err)
	}

	scheduler := NewScheduler(p, env.feedRepo, sources, nil, 20*time.Millisecond, 1)
	scheduler.Start()
	time.Sleep(150 * time.Millisecond)
	scheduler.Stop()

	if got := requests.Load(); got != 0 {
		t.Errorf("Expected no fetches before next_fetch_at, got: %d", got)
	}
}

func TestSchedulerSkipsDisabledSources(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte(atomTwoEntries))
	}))
	defer server.Close()

	env := newTestEnv(t)
	p := newTestPoller(env)

	source := config.Source{Name: "off", URL: server.URL, Disabled: true}
	if err := env.feedRepo.UpsertFeed(source.Name, source.URL); err != nil {
		t.Fatal(err)
	}

	sources := config.NewStore()
	if err := sources.Add(source); err != nil {
		t.Fatal(err)
	}

	scheduler := NewScheduler(p, env.feedRepo, sources, nil, 20*time.Millisecond, 1)
	scheduler.Start()
	time.Sleep(100 * time.Millisecond)
	scheduler.Stop()

	if got := requests.Load(); got != 0 {
		t.Errorf("Expected disabled source to never be fetched, got: %d", got)
	}
}

func TestSchedulerStopIsClean(t *testing.T) {
	env := newTestEnv(t)
	p := newTestPoller(env)

	scheduler := NewScheduler(p, env.feedRepo, config.NewStore(), nil, time.Hour, 2)
	scheduler.Start()

	done := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Scheduler did not stop in time")
	}
}
