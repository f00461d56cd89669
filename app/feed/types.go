package feed

import (
	"time"
)

type Type string

const (
	TypeRSS     Type = "rss"
	TypeAtom    Type = "atom"
	TypeUnknown Type = "unknown"
)

type Metadata struct {
	Type        Type
	Title       string
	Link        string
	Description string
	Language    string
	PublishedAt *time.Time
}

// Item is one entry candidate in document order. GUID is empty until the
// Resolver assigns it; NativeID carries the feed-supplied identifier verbatim.
type Item struct {
	GUID        string
	NativeID    string
	Title       string
	Link        string
	Summary     string
	PublishedAt *time.Time
}
