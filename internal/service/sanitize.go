package service

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var textPolicy = bluemonday.StrictPolicy()

// sanitizeText strips any markup from user-authored text before it is
// persisted or echoed back to other users.
func sanitizeText(input string) string {
	return strings.TrimSpace(textPolicy.Sanitize(input))
}
