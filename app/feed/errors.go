package feed

import (
	"fmt"
)

// ParseError reports a feed document that could not be parsed. The whole
// cycle is aborted; nothing from the document reaches the store.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse feed: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ResolutionError reports an entry candidate with no usable identity:
// no native id and nothing to derive one from. The entry is dropped,
// siblings in the same cycle are unaffected.
type ResolutionError struct {
	Title string
	Link  string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("entry has no usable identity (title=%q, link=%q)", e.Title, e.Link)
}
