package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		FeedURLs:     []string{"https://example.com/feed.xml"},
		FeedsFile:    "feeds.yml",
		DBPath:       "data/test.db",
		SnapshotPath: "data/test.jsonl",
		PollInterval: 300,
		HTTPTimeout:  20,
		WorkerCount:  1,
		Once:         true,
		Port:         "8080",
		APIAccessKey: "test-key",
		UserAgent:    "Test Agent",
		Timezone:     "UTC",
		Debug:        true,
		Version:      "test-version",
	}

	if len(cfg.FeedURLs) != 1 || cfg.FeedURLs[0] != "https://example.com/feed.xml" {
		t.Errorf("Expected feed URL 'https://example.com/feed.xml', got %v", cfg.FeedURLs)
	}
	if cfg.DBPath != "data/test.db" {
		t.Errorf("Expected db path 'data/test.db', got '%s'", cfg.DBPath)
	}
	if cfg.PollInterval != 300 {
		t.Errorf("Expected poll interval 300, got %d", cfg.PollInterval)
	}
	if cfg.HTTPTimeout != 20 {
		t.Errorf("Expected HTTP timeout 20, got %d", cfg.HTTPTimeout)
	}
	if !cfg.Once {
		t.Error("Expected once mode to be set")
	}
	if cfg.APIAccessKey != "test-key" {
		t.Errorf("Expected API key 'test-key', got '%s'", cfg.APIAccessKey)
	}
	if cfg.UserAgent != "Test Agent" {
		t.Errorf("Expected user agent 'Test Agent', got '%s'", cfg.UserAgent)
	}
}

func TestApplyTimezone(t *testing.T) {
	if err := applyTimezone("UTC"); err != nil {
		t.Errorf("Expected no error for UTC, got: %v", err)
	}
	if err := applyTimezone("Not/AZone"); err == nil {
		t.Error("Expected error for invalid timezone")
	}
}
