package product

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// textPolicy strips all markup from user-supplied product text.
var textPolicy = bluemonday.StrictPolicy()

// plainText removes tags (and script/style contents) and returns the trimmed
// text with entities decoded, so "Nuts & Bolts" survives unchanged.
func plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}
