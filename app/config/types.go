package config

// Source describes one feed to poll.
type Source struct {
	Name            string `yaml:"name"`
	URL             string `yaml:"url"`
	RefreshInterval int    `yaml:"refresh_interval"` // seconds, 0 means the global poll interval
	Disabled        bool   `yaml:"disabled"`
}

// File is the on-disk shape of a feeds file.
type File struct {
	Feeds []Source `yaml:"feeds"`
}
