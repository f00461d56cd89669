package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Resolver assigns the final GUID to a parsed entry candidate.
type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

// Run prefers the feed-native identifier verbatim. Without one it derives a
// deterministic identifier from the entry's link and title, so re-fetching an
// unchanged entry still dedups correctly across runs. An entry with no native
// id, no link and no title cannot be told apart from its siblings and is
// rejected with a ResolutionError.
func (r *Resolver) Run(item Item) (string, error) {
	if id := strings.TrimSpace(item.NativeID); id != "" {
		return id, nil
	}

	if item.Link == "" && item.Title == "" {
		return "", &ResolutionError{Title: item.Title, Link: item.Link}
	}

	return deriveGUID(item.Link, item.Title), nil
}

// deriveGUID hashes NFC-normalized link and title. Normalization keeps the
// identifier stable when a feed flips between composed and decomposed
// Unicode forms of the same text.
func deriveGUID(link, title string) string {
	content := fmt.Sprintf("%s|%s",
		norm.NFC.String(link),
		norm.NFC.String(title))

	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
