package goquery

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// hiddenElements are skipped, with all their descendants, when collecting
// visible text.
var hiddenElements = map[atom.Atom]struct{}{
	atom.Script:   {},
	atom.Style:    {},
	atom.Noscript: {},
	atom.Template: {},
	atom.Iframe:   {},
	atom.Object:   {},
}

// visibleText concatenates the text under root in document order,
// collapsing whitespace runs to single spaces and stopping at max bytes.
func visibleText(root *html.Node, max int) string {
	if root == nil {
		return ""
	}

	t := textBuilder{max: max}
	n := root
	for n != nil {
		if n.Type == html.TextNode {
			if !t.add(n.Data) {
				break
			}
		}

		if n.FirstChild != nil && !isHidden(n) {
			n = n.FirstChild
			continue
		}
		for n != root && n.NextSibling == nil {
			n = n.Parent
		}
		if n == root {
			break
		}
		n = n.NextSibling
	}
	return t.sb.String()
}

func isHidden(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	_, ok := hiddenElements[n.DataAtom]
	return ok
}

type textBuilder struct {
	sb  strings.Builder
	max int
}

// add appends the words of s. It reports false once the cap is reached.
func (t *textBuilder) add(s string) bool {
	for _, word := range strings.Fields(s) {
		if t.sb.Len() > 0 {
			// The separator is written only if a whole rune follows it.
			_, size := utf8.DecodeRuneInString(word)
			if t.sb.Len()+1+size > t.max {
				return false
			}
			t.sb.WriteByte(' ')
		}
		remaining := t.max - t.sb.Len()
		if len(word) > remaining {
			t.sb.WriteString(truncateUTF8(word, remaining))
			return false
		}
		t.sb.WriteString(word)
	}
	return t.sb.Len() < t.max
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if n >= len(s) {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
