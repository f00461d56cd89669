package feed

import (
	"bytes"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses RSS 2.0 or Atom bytes into metadata and entry candidates in
// document order. The format is detected from the document itself; character
// encoding follows the XML declaration, defaulting to UTF-8.
func (p *Parser) Run(data []byte) (*Metadata, []Item, error) {
	detected := detectType(data)

	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, &ParseError{Err: err}
	}

	metadata := &Metadata{
		Type:        detected,
		Title:       parsed.Title,
		Link:        parsed.Link,
		Description: parsed.Description,
		Language:    parsed.Language,
	}

	if parsed.PublishedParsed != nil {
		metadata.PublishedAt = parsed.PublishedParsed
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		items = append(items, normalizeItem(item))
	}

	return metadata, items, nil
}

func normalizeItem(item *gofeed.Item) Item {
	normalized := Item{
		NativeID: item.GUID,
		Title:    item.Title,
		Link:     item.Link,
		Summary:  item.Description,
	}

	if item.PublishedParsed != nil {
		normalized.PublishedAt = item.PublishedParsed
	}

	return normalized
}

func detectType(data []byte) Type {
	switch gofeed.DetectFeedType(bytes.NewReader(data)) {
	case gofeed.FeedTypeRSS:
		return TypeRSS
	case gofeed.FeedTypeAtom:
		return TypeAtom
	default:
		return TypeUnknown
	}
}
