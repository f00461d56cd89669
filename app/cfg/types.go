package cfg

type Cfg struct {
	// Feed sources
	FeedURLs  []string
	FeedsFile string

	// Storage
	DBPath       string
	SnapshotPath string

	// Polling
	PollInterval int // seconds
	HTTPTimeout  int // seconds
	WorkerCount  int
	Once         bool

	// HTTP server
	Port         string
	APIAccessKey string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
