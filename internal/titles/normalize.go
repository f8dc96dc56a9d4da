// Package titles provides title normalization and candidate reconciliation.
//
// Chart scrapers and the directory API disagree on casing and whitespace for
// the same show, so every identity comparison in the pipeline goes through
// Normalize. The ledger stores the normalized key alongside the raw title and
// the reporting views join on it.
package titles

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// Normalize maps a raw title to its canonical comparison key.
// Two raw titles refer to the same chart entity iff their keys are equal.
func Normalize(title string) string {
	if title == "" {
		return ""
	}

	// Unicode NFC normalization
	title = norm.NFC.String(title)

	// Lowercase
	title = strings.ToLower(title)

	// Trim and collapse internal whitespace
	title = whitespaceRE.ReplaceAllString(title, " ")
	title = strings.TrimSpace(title)

	return title
}
