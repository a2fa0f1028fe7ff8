package analysis

import (
	"regexp"
	"strings"
)

var (
	boldMarkdown      = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicMarkdown    = regexp.MustCompile(`\*(.*?)\*`)
	underlineMarkdown = regexp.MustCompile(`__(.*?)__`)
	runsOfSpace       = regexp.MustCompile(`\s+`)
	camelBoundary     = regexp.MustCompile(`([a-z])([A-Z])`)
	digitThenLetter   = regexp.MustCompile(`(\d)([A-Za-z])`)
	letterThenDigit   = regexp.MustCompile(`([A-Za-z])(\d)`)
)

// CleanText strips markdown artifacts and normalizes spacing in extracted
// values before they are rendered or exported. Word-boundary fixes only
// apply to longer blocks so short names and titles are left alone.
func CleanText(text string) string {
	if text == "" || text == Sentinel {
		return text
	}

	text = boldMarkdown.ReplaceAllString(text, "$1")
	text = italicMarkdown.ReplaceAllString(text, "$1")
	text = underlineMarkdown.ReplaceAllString(text, "$1")

	text = runsOfSpace.ReplaceAllString(text, " ")

	if len(text) > 50 {
		text = camelBoundary.ReplaceAllString(text, "$1 $2")
		text = digitThenLetter.ReplaceAllString(text, "$1 $2")
		text = letterThenDigit.ReplaceAllString(text, "$1 $2")
	}

	return strings.TrimSpace(text)
}
