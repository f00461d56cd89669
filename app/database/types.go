package database

import (
	"time"
)

type Feed struct {
	Name          string
	FeedURL       string
	Title         string
	Link          string
	Description   string
	LastFetchedAt *time.Time
	NextFetchAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Item is one archived feed entry. Rows are immutable once inserted:
// first-seen wins, there is no update or delete path.
type Item struct {
	ID          int64
	FeedName    string
	GUID        string
	Title       string
	Link        string
	Summary     string
	PublishedAt *time.Time
	FetchedAt   time.Time
}

type FeedRepository interface {
	GetFeed(name string) (*Feed, error)
	GetFeedCount() (int, error)

	UpsertFeed(name, feedURL string) error
	UpdateFeedMetadata(name, title, link, description string) error
	UpdateFetchTimes(name string, lastFetched, nextFetch time.Time) error
}

type ItemRepository interface {
	InsertIfAbsent(item Item) (bool, error)
	Contains(guid string) (bool, error)

	GetAllItems(since *time.Time, limit int) ([]Item, error)
	GetRecentItems(limit int) ([]Item, error)
	GetItemCount() (int, error)
	GetFeedItemCount(feedName string) (int, error)
}
