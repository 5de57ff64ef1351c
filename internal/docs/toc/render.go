package toc

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	linkBase     = "block text-sm transition-colors hover:text-foreground"
	linkActive   = "text-foreground font-medium"
	linkInactive = "text-muted-foreground"
)

// Level 3 entries are muted like every inactive entry, so only the indent
// depends on the level there.
var levelClass = map[int]string{
	1: "font-semibold",
	2: "pl-4",
	3: "pl-8",
}

// Render returns the side-panel nav for headings with activeID highlighted.
// No headings renders nothing.
func Render(headings []Heading, activeID string) string {
	if len(headings) == 0 {
		return ""
	}

	list := element(atom.Ul, "space-y-2")
	for _, h := range headings {
		a := element(atom.A, linkClass(h, activeID))
		a.Attr = append([]html.Attribute{{Key: "href", Val: "#" + h.ID}}, a.Attr...)
		a.AppendChild(&html.Node{Type: html.TextNode, Data: h.Text})

		li := element(atom.Li, "")
		li.AppendChild(a)
		list.AppendChild(li)
	}

	title := element(atom.H3, "text-sm font-semibold text-muted-foreground uppercase tracking-wider mb-4")
	title.AppendChild(&html.Node{Type: html.TextNode, Data: "On this page"})

	sticky := element(atom.Div, "sticky top-24")
	sticky.AppendChild(title)
	sticky.AppendChild(list)

	nav := element(atom.Nav, "w-64 border-l pl-6")
	nav.AppendChild(sticky)

	var b strings.Builder
	if err := html.Render(&b, nav); err != nil {
		return ""
	}
	return b.String()
}

func linkClass(h Heading, activeID string) string {
	parts := []string{linkBase}
	if c, ok := levelClass[h.Level]; ok {
		parts = append(parts, c)
	}
	if h.ID == activeID {
		parts = append(parts, linkActive)
	} else {
		parts = append(parts, linkInactive)
	}
	return strings.Join(parts, " ")
}

func element(a atom.Atom, class string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	if class != "" {
		n.Attr = []html.Attribute{{Key: "class", Val: class}}
	}
	return n
}
