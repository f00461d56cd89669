package database

import (
	"database/sql"
	"time"
)

var _ FeedRepository = (*FeedRepositoryImpl)(nil)

type FeedRepositoryImpl struct {
	db *DB
}

func NewFeedRepository(db *DB) *FeedRepositoryImpl {
	return &FeedRepositoryImpl{db: db}
}

func (r *FeedRepositoryImpl) GetFeed(name string) (*Feed, error) {
	var feed Feed
	err := r.db.QueryRow(`
		SELECT name, feed_url, title, link, description,
		       last_fetched_at, next_fetch_at, created_at, updated_at
		FROM feeds
		WHERE name = ?
	`, name).Scan(
		&feed.Name, &feed.FeedURL, &feed.Title, &feed.Link, &feed.Description,
		&feed.LastFetchedAt, &feed.NextFetchAt, &feed.CreatedAt, &feed.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &StoreError{Op: "get feed", Err: err}
	}

	return &feed, nil
}

func (r *FeedRepositoryImpl) GetFeedCount() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM feeds").Scan(&count); err != nil {
		return 0, &StoreError{Op: "count feeds", Err: err}
	}
	return count, nil
}

// UpsertFeed registers a source, updating the URL if the configuration changed.
func (r *FeedRepositoryImpl) UpsertFeed(name, feedURL string) error {
	_, err := r.db.Exec(`
		INSERT INTO feeds (name, feed_url)
		VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET
			feed_url = excluded.feed_url,
			updated_at = CURRENT_TIMESTAMP
	`, name, feedURL)
	if err != nil {
		return &StoreError{Op: "upsert feed", Err: err}
	}

	return nil
}

func (r *FeedRepositoryImpl) UpdateFeedMetadata(name, title, link, description string) error {
	_, err := r.db.Exec(`
		UPDATE feeds
		SET title = ?, link = ?, description = ?, updated_at = CURRENT_TIMESTAMP
		WHERE name = ?
	`, title, link, description, name)
	if err != nil {
		return &StoreError{Op: "update feed metadata", Err: err}
	}

	return nil
}

func (r *FeedRepositoryImpl) UpdateFetchTimes(name string, lastFetched, nextFetch time.Time) error {
	_, err := r.db.Exec(`
		UPDATE feeds
		SET last_fetched_at = ?, next_fetch_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE name = ?
	`, lastFetched, nextFetch, name)
	if err != nil {
		return &StoreError{Op: "update fetch times", Err: err}
	}

	return nil
}
