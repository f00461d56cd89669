package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads feed source definitions from a YAML file.
func LoadFile(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feeds file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse feeds file: %w", err)
	}

	for i := range file.Feeds {
		if file.Feeds[i].Name == "" {
			file.Feeds[i].Name = DeriveName(file.Feeds[i].URL)
		}
	}

	if err := validate(file.Feeds); err != nil {
		return nil, fmt.Errorf("invalid feeds file %s: %w", path, err)
	}

	return file.Feeds, nil
}

// FromURLs builds sources for feed URLs given on the command line.
func FromURLs(urls []string) ([]Source, error) {
	sources := make([]Source, 0, len(urls))
	for _, u := range urls {
		sources = append(sources, Source{
			Name: DeriveName(u),
			URL:  u,
		})
	}

	if err := validate(sources); err != nil {
		return nil, err
	}

	return sources, nil
}

// DeriveName produces a stable source name from a feed URL: the host plus a
// short URL hash, so two feeds on one host do not collide.
func DeriveName(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	suffix := hex.EncodeToString(sum[:4])

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return suffix
	}

	host := strings.TrimPrefix(parsed.Host, "www.")
	return host + "-" + suffix
}

func validate(sources []Source) error {
	seen := make(map[string]bool, len(sources))
	for i, s := range sources {
		if s.URL == "" {
			return fmt.Errorf("source %d: feed URL is required", i)
		}
		if s.RefreshInterval < 0 {
			return fmt.Errorf("source %s: refresh interval must be non-negative", s.Name)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate source name: %s", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}
