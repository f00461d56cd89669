package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Feed sources
	FeedURLs  []string `long:"url" env:"FEED_URL" env-delim:"," description:"RSS/Atom feed URL (can be repeated)"`
	FeedsFile string   `long:"feeds-file" env:"FEEDS_FILE" description:"YAML file with feed source definitions"`

	// Storage
	DBPath       string `long:"db" env:"DB_PATH" default:"data/feedstash.db" description:"SQLite database path"`
	SnapshotPath string `long:"snapshot" env:"SNAPSHOT_PATH" description:"JSONL snapshot path, refreshed after cycles that insert new items (optional)"`

	// Polling
	PollInterval int  `long:"interval" env:"POLL_INTERVAL" default:"300" description:"Polling interval in seconds"`
	HTTPTimeout  int  `long:"timeout" env:"HTTP_TIMEOUT" default:"20" description:"Feed fetch timeout in seconds"`
	WorkerCount  int  `long:"worker-count" env:"WORKER_COUNT" default:"1" description:"Number of background workers for feed polling"`
	Once         bool `long:"once" env:"ONCE" description:"Poll each feed once and exit"`

	// HTTP server
	Port         string `long:"port" env:"PORT" description:"HTTP server port (server disabled when empty)"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"feedstash/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		FeedURLs:     raw.FeedURLs,
		FeedsFile:    raw.FeedsFile,
		DBPath:       raw.DBPath,
		SnapshotPath: raw.SnapshotPath,
		PollInterval: raw.PollInterval,
		HTTPTimeout:  raw.HTTPTimeout,
		WorkerCount:  raw.WorkerCount,
		Once:         raw.Once,
		Port:         raw.Port,
		APIAccessKey: raw.APIAccessKey,
		UserAgent:    raw.UserAgent,
		Timezone:     raw.Timezone,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
