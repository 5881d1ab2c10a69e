package utils

import (
	"html"
	"strings"
)

// CleanText prepares user supplied text for storage: line endings are
// normalized and HTML special characters escaped so clients can render it as is.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return html.EscapeString(s)
}
