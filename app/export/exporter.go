package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/feedstash/feedstash/app/database"
)

// Record is one exported item, one JSON object per line.
type Record struct {
	GUID      string  `json:"guid"`
	Title     string  `json:"title"`
	Link      string  `json:"link"`
	Published *string `json:"published"`
	Summary   *string `json:"summary"`
	FetchedAt string  `json:"fetched_at"`
}

type Exporter struct {
	itemRepo     database.ItemRepository
	snapshotPath string
}

func NewExporter(itemRepo database.ItemRepository, snapshotPath string) *Exporter {
	return &Exporter{
		itemRepo:     itemRepo,
		snapshotPath: snapshotPath,
	}
}

// WriteTo streams the archive as JSONL in ingestion order. A nil since means
// no lower bound, a limit of 0 means everything. Returns the row count.
func (e *Exporter) WriteTo(w io.Writer, since *time.Time, limit int) (int, error) {
	items, err := e.itemRepo.GetAllItems(since, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to scan items: %w", err)
	}

	enc := json.NewEncoder(w)
	written := 0
	for _, item := range items {
		if err := enc.Encode(toRecord(item)); err != nil {
			return written, fmt.Errorf("failed to encode item %s: %w", item.GUID, err)
		}
		written++
	}

	return written, nil
}

// WriteSnapshot rewrites the configured snapshot file with the full archive.
// The file is written to a temp path and renamed, so readers never observe a
// half-written snapshot.
func (e *Exporter) WriteSnapshot() (int, error) {
	if e.snapshotPath == "" {
		return 0, nil
	}

	if dir := filepath.Dir(e.snapshotPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(e.snapshotPath), ".snapshot-*.jsonl")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	written, err := e.WriteTo(tmp, nil, 0)
	if err != nil {
		tmp.Close()
		return 0, err
	}

	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to close temp snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), e.snapshotPath); err != nil {
		return 0, fmt.Errorf("failed to replace snapshot: %w", err)
	}

	return written, nil
}

func toRecord(item database.Item) Record {
	record := Record{
		GUID:      item.GUID,
		Title:     item.Title,
		Link:      item.Link,
		FetchedAt: item.FetchedAt.UTC().Format(time.RFC3339Nano),
	}

	if item.PublishedAt != nil {
		published := item.PublishedAt.UTC().Format(time.RFC3339)
		record.Published = &published
	}

	if cleaned := CleanSummary(item.Summary); cleaned != "" {
		record.Summary = &cleaned
	}

	return record
}
