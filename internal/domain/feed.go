package domain

import "strings"

// Root element names of the two feed shapes.
const (
	RootPublicFeed = "public_feed"
	RootUserFeed   = "feed"
)

// SongEntry is one song from a feed.
type SongEntry struct {
	Title string
	Link  string
}

// Valid reports whether both fields are present and non-blank.
func (s SongEntry) Valid() bool {
	return strings.TrimSpace(s.Title) != "" && strings.TrimSpace(s.Link) != ""
}

// FeedDocument is a parsed feed whose root element matched what the request
// expected. Songs keep document order.
type FeedDocument struct {
	Root  string
	Name  string
	Songs []SongEntry

	// Skipped counts song elements dropped for a missing title or link.
	Skipped int
}

// Empty reports whether the document carries no usable songs.
func (d FeedDocument) Empty() bool {
	return len(d.Songs) == 0
}
