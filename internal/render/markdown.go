// Package render holds the pure view helpers applied to assistant messages:
// markdown stripping and URL linkification.
package render

import (
	"regexp"
	"strings"
)

var (
	boldRe    = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe  = regexp.MustCompile(`\*(.*?)\*`)
	dunderRe  = regexp.MustCompile(`__(.*?)__`)
	underRe   = regexp.MustCompile(`_(.*?)_`)
	codeRe    = regexp.MustCompile("`(.*?)`")
	headingRe = regexp.MustCompile(`#{1,6}\s`)
	linkRe    = regexp.MustCompile(`\[(.*?)\]\(.*?\)`)
	bulletRe  = regexp.MustCompile(`(?m)^\s*[-*+]\s`)
	numListRe = regexp.MustCompile(`(?m)^\s*\d+\.\s`)
	urlRe     = regexp.MustCompile(`https?://\S+`)
)

// StripMarkdown removes the markdown notation the model tends to emit, leaving
// plain text: emphasis markers, inline code, headings, link syntax and list
// prefixes.
func StripMarkdown(content string) string {
	content = boldRe.ReplaceAllString(content, "$1")
	content = italicRe.ReplaceAllString(content, "$1")
	content = dunderRe.ReplaceAllString(content, "$1")
	content = underRe.ReplaceAllString(content, "$1")
	content = codeRe.ReplaceAllString(content, "$1")
	content = headingRe.ReplaceAllString(content, "")
	content = linkRe.ReplaceAllString(content, "$1")
	content = bulletRe.ReplaceAllString(content, "• ")
	content = numListRe.ReplaceAllString(content, "")
	return strings.TrimSpace(content)
}

// Segment is a run of plain text or a clickable link.
type Segment struct {
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
}

// Linkify splits content into text and link segments so the frontend can make
// bare URLs clickable.
func Linkify(content string) []Segment {
	var segments []Segment
	last := 0
	for _, loc := range urlRe.FindAllStringIndex(content, -1) {
		if loc[0] > last {
			segments = append(segments, Segment{Text: content[last:loc[0]]})
		}
		url := content[loc[0]:loc[1]]
		segments = append(segments, Segment{Text: url, URL: url})
		last = loc[1]
	}
	if last < len(content) {
		segments = append(segments, Segment{Text: content[last:]})
	}
	return segments
}

// Render cleans assistant content and splits it into displayable segments.
func Render(content string) []Segment {
	return Linkify(StripMarkdown(content))
}
