package database

import (
	"database/sql"
	"time"
)

var _ ItemRepository = (*ItemRepositoryImpl)(nil)

type ItemRepositoryImpl struct {
	db *DB
}

func NewItemRepository(db *DB) *ItemRepositoryImpl {
	return &ItemRepositoryImpl{db: db}
}

// InsertIfAbsent inserts the item unless its GUID is already stored. The
// unique index on guid makes this atomic under concurrent pollers: exactly
// one insert succeeds per GUID, every other caller observes false with no
// mutation. An existing row is never updated.
func (r *ItemRepositoryImpl) InsertIfAbsent(item Item) (bool, error) {
	res, err := r.db.Exec(`
		INSERT INTO items (feed_name, guid, title, link, summary, published_at, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (guid) DO NOTHING
	`, item.FeedName, item.GUID, item.Title, item.Link, item.Summary,
		item.PublishedAt, item.FetchedAt)
	if err != nil {
		return false, &StoreError{Op: "insert item", Err: err}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, &StoreError{Op: "insert item", Err: err}
	}

	return affected > 0, nil
}

func (r *ItemRepositoryImpl) Contains(guid string) (bool, error) {
	var one int
	err := r.db.QueryRow("SELECT 1 FROM items WHERE guid = ? LIMIT 1", guid).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, &StoreError{Op: "check item", Err: err}
	}

	return true, nil
}

// GetAllItems scans the archive in ingestion order for export. A nil since
// means no lower bound; a limit of 0 means no limit.
func (r *ItemRepositoryImpl) GetAllItems(since *time.Time, limit int) ([]Item, error) {
	query := `
		SELECT id, feed_name, guid, title, link, summary, published_at, fetched_at
		FROM items
	`
	var args []interface{}

	if since != nil {
		query += " WHERE fetched_at >= ?"
		args = append(args, *since)
	}
	query += " ORDER BY fetched_at ASC, id ASC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	return r.scanItems(query, args...)
}

func (r *ItemRepositoryImpl) GetRecentItems(limit int) ([]Item, error) {
	return r.scanItems(`
		SELECT id, feed_name, guid, title, link, summary, published_at, fetched_at
		FROM items
		ORDER BY fetched_at DESC, id DESC
		LIMIT ?
	`, limit)
}

func (r *ItemRepositoryImpl) GetItemCount() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM items").Scan(&count); err != nil {
		return 0, &StoreError{Op: "count items", Err: err}
	}
	return count, nil
}

func (r *ItemRepositoryImpl) GetFeedItemCount(feedName string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM items WHERE feed_name = ?", feedName).Scan(&count)
	if err != nil {
		return 0, &StoreError{Op: "count feed items", Err: err}
	}
	return count, nil
}

func (r *ItemRepositoryImpl) scanItems(query string, args ...interface{}) ([]Item, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, &StoreError{Op: "query items", Err: err}
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		err := rows.Scan(
			&item.ID, &item.FeedName, &item.GUID, &item.Title,
			&item.Link, &item.Summary, &item.PublishedAt, &item.FetchedAt,
		)
		if err != nil {
			return nil, &StoreError{Op: "scan item row", Err: err}
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "iterate item rows", Err: err}
	}

	return items, nil
}
