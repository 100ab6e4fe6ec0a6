// Package cleanup strips directive marker tags from serialized markup.
package cleanup

import "regexp"

// markerTag matches an opening, closing or self-closing extend-to,
// include-file or section-<id> tag with any attributes. Quoted attribute
// values may contain '>'.
var markerTag = regexp.MustCompile(`(?i)</?(?:extend-to|include-file|section-[a-z0-9-]+)(?:\s(?:"[^"]*"|'[^']*'|[^'">])*)?/?>`)

// Strip removes every marker tag from text and leaves whatever sat between
// the tags untouched. Text without markers is returned as is.
func Strip(text string) string {
	return markerTag.ReplaceAllLiteralString(text, "")
}

// Contains reports whether text still holds any marker tag.
func Contains(text string) bool {
	return markerTag.MatchString(text)
}
