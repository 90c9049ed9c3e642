package catalog

import (
	"strings"

	"github.com/m3rciful/linkbot/core/telegram/format"
)

func writeLinks(b *strings.Builder, links []Link) {
	for _, l := range links {
		b.WriteString("• ")
		b.WriteString(format.Link(l.Name, format.EscapeURL(l.URL)))
		b.WriteByte('\n')
	}
}

// CategoryText renders one category as Markdown: the header, a blank line
// and a bullet per link.
func CategoryText(cat Category) string {
	var b strings.Builder
	b.WriteString(cat.Text)
	b.WriteString("\n\n")
	writeLinks(&b, cat.Links)
	return b.String()
}

// AllText renders every category in declared order under the catalog title.
// The output depends only on the catalog, so repeated calls are identical.
func (c *Catalog) AllText() string {
	var b strings.Builder
	b.WriteString(c.spec.AllTitle)
	b.WriteString("\n\n")
	for _, cat := range c.spec.Categories {
		b.WriteString(cat.Text)
		b.WriteByte('\n')
		writeLinks(&b, cat.Links)
		b.WriteByte('\n')
	}
	return b.String()
}

// OpenAllMessages returns one Markdown link per message for the open-all
// fan-out. URLs are left unescaped here.
func OpenAllMessages(cat Category) []string {
	out := make([]string, 0, len(cat.Links))
	for _, l := range cat.Links {
		out = append(out, format.Link(l.Name, l.URL))
	}
	return out
}
