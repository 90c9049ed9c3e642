package format

import (
	"regexp"
	"strings"
)

var mdV1Re = regexp.MustCompile("[_*`\\[]")

// EscapeV1 escapes the characters legacy Markdown treats as markup.
func EscapeV1(text string) string {
	return mdV1Re.ReplaceAllString(text, `\$0`)
}

// EscapeURL escapes underscores inside a link target so legacy Markdown
// does not read them as italics markers.
func EscapeURL(url string) string {
	return strings.ReplaceAll(url, "_", `\_`)
}

// Link renders a Markdown inline link.
func Link(name, url string) string {
	return "[" + name + "](" + url + ")"
}
