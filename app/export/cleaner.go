package export

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// stripPolicy removes every HTML tag, keeping only text content.
var stripPolicy = bluemonday.StrictPolicy()

// Feed descriptions routinely drag along site chrome that is useless in an
// archive: cookie banners, consent text, "read more" stubs. These are removed
// from the export only; stored rows keep the raw feed-supplied summary.
var boilerplatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)we use cookies to ensure[\s\S]{0,200}`),
	regexp.MustCompile(`(?i)by continued use, you (agree|accept)[\s\S]{0,200}`),
	regexp.MustCompile(`(?i)click (find out more|here for more)`),
	regexp.MustCompile(`(?i)i agree`),
	regexp.MustCompile(`(?i)find out more`),
	regexp.MustCompile(`(?i)advertisement`),
	regexp.MustCompile(`(?i)filtered by:\s*\w+`),
	regexp.MustCompile(`(?i)read more`),
	regexp.MustCompile(`(?i)continue reading`),
	regexp.MustCompile(`(?i)subscribe`),
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// CleanSummary prepares a raw feed summary for export: boilerplate phrases
// removed, HTML stripped, entities decoded, whitespace collapsed. Returns ""
// when nothing survives.
func CleanSummary(s string) string {
	if s == "" {
		return ""
	}

	for _, pattern := range boilerplatePatterns {
		s = pattern.ReplaceAllString(s, " ")
	}

	s = stripPolicy.Sanitize(s)
	s = html.UnescapeString(s)
	s = whitespaceRe.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}
