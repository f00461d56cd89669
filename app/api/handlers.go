package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/feedstash/feedstash/app/config"
	"github.com/feedstash/feedstash/app/database"
	"github.com/feedstash/feedstash/app/export"
)

type Handler struct {
	feedRepo database.FeedRepository
	itemRepo database.ItemRepository
	exporter *export.Exporter
	sources  *config.Store
	version  string
}

func NewHandler(feedRepo database.FeedRepository, itemRepo database.ItemRepository,
	exporter *export.Exporter, sources *config.Store, version string) *Handler {
	return &Handler{
		feedRepo: feedRepo,
		itemRepo: itemRepo,
		exporter: exporter,
		sources:  sources,
		version:  version,
	}
}

// GetItems returns the most recently ingested items.
func (h *Handler) GetItems(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 1000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer between 1 and 1000"})
			return
		}
		limit = parsed
	}

	items, err := h.itemRepo.GetRecentItems(limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_recent_items", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	out := make([]gin.H, 0, len(items))
	for _, item := range items {
		entry := gin.H{
			"guid":       item.GUID,
			"feed":       item.FeedName,
			"title":      item.Title,
			"link":       item.Link,
			"summary":    item.Summary,
			"fetched_at": item.FetchedAt.UTC().Format(time.RFC3339Nano),
		}
		if item.PublishedAt != nil {
			entry["published"] = item.PublishedAt.UTC().Format(time.RFC3339)
		}
		out = append(out, entry)
	}

	c.JSON(http.StatusOK, gin.H{"items": out, "count": len(out)})
}

// GetExport streams the archive as line-delimited JSON. Optional query
// params: since (RFC 3339 lower bound on fetched_at) and limit.
func (h *Handler) GetExport(c *gin.Context) {
	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since must be an RFC 3339 timestamp"})
			return
		}
		since = &parsed
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	c.Header("Content-Type", "application/x-ndjson; charset=utf-8")
	c.Status(http.StatusOK)

	written, err := h.exporter.WriteTo(c.Writer, since, limit)
	if err != nil {
		// Headers are gone; all we can do is log and cut the stream
		slog.Error("Export stream failed", "written", written, "error", err)
		return
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"version":   h.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if feedCount, err := h.feedRepo.GetFeedCount(); err == nil {
		health["feeds"] = feedCount
	}
	health["configured_sources"] = h.sources.Count()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := gin.H{}

	if total, err := h.itemRepo.GetItemCount(); err == nil {
		stats["items"] = total
	}
	if feedCount, err := h.feedRepo.GetFeedCount(); err == nil {
		stats["feeds"] = feedCount
	}

	c.JSON(http.StatusOK, stats)
}

// APIListFeeds returns per-source details including fetch bookkeeping.
func (h *Handler) APIListFeeds(c *gin.Context) {
	sources := h.sources.GetAll()

	feeds := make([]gin.H, 0, len(sources))
	for _, source := range sources {
		info := gin.H{
			"name":     source.Name,
			"url":      source.URL,
			"disabled": source.Disabled,
		}

		if dbFeed, err := h.feedRepo.GetFeed(source.Name); err == nil && dbFeed != nil {
			info["title"] = dbFeed.Title
			info["last_fetched_at"] = dbFeed.LastFetchedAt
			info["next_fetch_at"] = dbFeed.NextFetchAt
		}

		if count, err := h.itemRepo.GetFeedItemCount(source.Name); err == nil {
			info["item_count"] = count
		}

		feeds = append(feeds, info)
	}

	c.JSON(http.StatusOK, gin.H{"feeds": feeds})
}
