package feed

import (
	"html"
	"strings"

	"github.com/jeffreymorganio/songza-commands-for-enso/internal/domain"
)

// BuildList renders songs as a list of links, one item per song in the given
// order. The title is escaped and used for both the link text and its title
// attribute. An empty slice renders as the empty string.
func BuildList(songs []domain.SongEntry) string {
	if len(songs) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("<ol>\n")
	for i, s := range songs {
		title := html.EscapeString(s.Title)
		b.WriteString(`<li><a href="`)
		b.WriteString(html.EscapeString(s.Link))
		b.WriteString(`" title="`)
		b.WriteString(title)
		b.WriteString(`">`)
		b.WriteString(title)
		b.WriteString("</a></li>")
		if i < len(songs)-1 {
			b.WriteByte('\n')
		}
	}
	b.WriteString("\n</ol>")
	return b.String()
}
