// Package toc extracts h1-h3 headings from rendered documentation, gives each
// one a unique anchor id and renders the "On this page" side panel.
package toc

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ActiveRootMargin is the viewport band in which a heading counts as the
// active one: 100px off the top and the bottom 66% excluded. Clients feed it
// to their intersection observer and send the active id back.
const ActiveRootMargin = "-100px 0px -66% 0px"

type Heading struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// Slugify lowercases text, drops everything but ASCII word characters,
// whitespace and hyphens, and turns every run of whitespace and hyphens into a
// single hyphen. Runs at either end are kept, so "🚀 Launch" becomes "-launch"
// and does not collide with "Launch".
func Slugify(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	pendingHyphen := false
	for _, r := range strings.ToLower(text) {
		switch {
		case isWord(r):
			if pendingHyphen {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case r == '-' || unicode.IsSpace(r):
			pendingHyphen = true
		}
	}
	if pendingHyphen {
		b.WriteByte('-')
	}
	return b.String()
}

func isWord(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// Extract walks doc in document order and returns its h1-h3 headings. Each
// heading keeps a non-empty id attribute as its base, otherwise the slug of its
// text; headings with an empty base are skipped. Repeats of a base get -1, -2,
// ... in order of appearance. The final id is written back onto the element,
// so running Extract again over the same tree yields the same ids.
func Extract(doc *html.Node) []Heading {
	var out []Heading
	counts := make(map[string]int)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if level := headingLevel(n); level > 0 {
			text := textContent(n)
			base := attr(n, "id")
			if base == "" {
				base = Slugify(text)
			}
			if base != "" {
				id := base
				if k := counts[base]; k > 0 {
					id = base + "-" + strconv.Itoa(k)
				}
				counts[base]++
				setAttr(n, "id", id)
				out = append(out, Heading{ID: id, Text: text, Level: level})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

func headingLevel(n *html.Node) int {
	if n.Type != html.ElementNode {
		return 0
	}
	switch n.DataAtom {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	}
	return 0
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
