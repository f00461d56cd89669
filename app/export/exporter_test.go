package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/feedstash/feedstash/app/database"
)

func newTestRepo(t *testing.T) database.ItemRepository {
	t.Helper()

	db, err := database.NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := database.RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	if err := database.NewFeedRepository(db).UpsertFeed("test-feed", "https://example.com/feed.xml"); err != nil {
		t.Fatal(err)
	}

	return database.NewItemRepository(db)
}

func seedItems(t *testing.T, repo database.ItemRepository) {
	t.Helper()

	base := time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC)
	published := base.Add(-time.Hour)

	items := []database.Item{
		{
			FeedName:    "test-feed",
			GUID:        "first",
			Title:       "First Item",
			Link:        "https://example.com/1",
			Summary:     "<p>Useful text.</p> We use cookies to ensure you get the best experience.",
			PublishedAt: &published,
			FetchedAt:   base,
		},
		{
			FeedName:  "test-feed",
			GUID:      "second",
			Title:     "Second Item",
			Link:      "https://example.com/2",
			Summary:   "",
			FetchedAt: base.Add(time.Hour),
		},
	}

	for _, item := range items {
		if _, err := repo.InsertIfAbsent(item); err != nil {
			t.Fatal(err)
		}
	}
}

func TestWriteTo(t *testing.T) {
	repo := newTestRepo(t)
	seedItems(t, repo)

	var buf bytes.Buffer
	written, err := NewExporter(repo, "").WriteTo(&buf, nil, 0)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if written != 2 {
		t.Errorf("Expected 2 records written, got: %d", written)
	}

	scanner := bufio.NewScanner(&buf)
	var records []Record
	for scanner.Scan() {
		var record Record
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("Line is not valid JSON: %v", err)
		}
		records = append(records, record)
	}

	if len(records) != 2 {
		t.Fatalf("Expected 2 lines, got: %d", len(records))
	}

	// Ingestion order
	if records[0].GUID != "first" || records[1].GUID != "second" {
		t.Errorf("Expected ingestion order, got: %s, %s", records[0].GUID, records[1].GUID)
	}

	// Summary is cleaned: tags stripped, cookie banner removed
	if records[0].Summary == nil {
		t.Fatal("Expected summary on first record")
	}
	if *records[0].Summary != "Useful text." {
		t.Errorf("Expected cleaned summary 'Useful text.', got: %q", *records[0].Summary)
	}

	// Empty summary exports as null
	if records[1].Summary != nil {
		t.Errorf("Expected nil summary, got: %q", *records[1].Summary)
	}

	// Published present on the first, absent on the second
	if records[0].Published == nil {
		t.Error("Expected published timestamp on first record")
	}
	if records[1].Published != nil {
		t.Error("Expected nil published on second record")
	}

	if records[0].FetchedAt == "" {
		t.Error("Expected fetched_at to be set")
	}
}

func TestWriteToSinceAndLimit(t *testing.T) {
	repo := newTestRepo(t)
	seedItems(t, repo)

	since := time.Date(2023, 7, 3, 10, 30, 0, 0, time.UTC)
	var buf bytes.Buffer
	written, err := NewExporter(repo, "").WriteTo(&buf, &since, 0)
	if err != nil {
		t.Fatal(err)
	}
	if written != 1 {
		t.Errorf("Expected 1 record after since, got: %d", written)
	}
	if !strings.Contains(buf.String(), `"guid":"second"`) {
		t.Errorf("Expected only the later record, got: %s", buf.String())
	}

	buf.Reset()
	written, err = NewExporter(repo, "").WriteTo(&buf, nil, 1)
	if err != nil {
		t.Fatal(err)
	}
	if written != 1 {
		t.Errorf("Expected 1 record with limit, got: %d", written)
	}
}

func TestWriteSnapshot(t *testing.T) {
	repo := newTestRepo(t)
	seedItems(t, repo)

	path := filepath.Join(t.TempDir(), "out", "snapshot.jsonl")
	exporter := NewExporter(repo, path)

	written, err := exporter.WriteSnapshot()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if written != 2 {
		t.Errorf("Expected 2 records, got: %d", written)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected snapshot file, got: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Errorf("Expected 2 lines in snapshot, got: %d", len(lines))
	}

	// Rewriting replaces, never appends
	if _, err := exporter.WriteSnapshot(); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(path)
	lines = strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Errorf("Expected snapshot rewrite to keep 2 lines, got: %d", len(lines))
	}
}

func TestWriteSnapshotNoPath(t *testing.T) {
	repo := newTestRepo(t)

	written, err := NewExporter(repo, "").WriteSnapshot()
	if err != nil {
		t.Errorf("Expected no error without a path, got: %v", err)
	}
	if written != 0 {
		t.Errorf("Expected 0 records, got: %d", written)
	}
}

func TestCleanSummary(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Just text.", "Just text."},
		{"html stripped", "<p>Hello <b>world</b></p>", "Hello world"},
		{"entities decoded", "fish &amp; chips", "fish & chips"},
		{"cookie banner removed", "Story. We use cookies to ensure a great stay on our site.", "Story."},
		{"read more removed", "Short teaser. Read more", "Short teaser."},
		{"whitespace collapsed", "a\n\n  b\t c", "a b c"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanSummary(tc.in); got != tc.want {
				t.Errorf("CleanSummary(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
