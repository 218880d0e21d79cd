package scrape

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/cognicore/rhea/pkg/rhea/compose"
	"github.com/cognicore/rhea/pkg/rhea/provider"
)

const (
	whoBlocksPerPage = 5
	whoContentRunes  = 800
	whoMinRunes      = 100

	mohfwCandidates = 10
	mohfwMinRunes   = 100
	mohfwMaxRunes   = 500
)

var (
	whoBlockClass = regexp.MustCompile(`(?i)(content|article|topic|fact)`)
	mohfwTopic    = regexp.MustCompile(`(?i)(health|disease|prevention|symptoms|vaccine|treatment)`)
)

// ExtractWHO pulls advisories out of a WHO page. Candidate blocks are
// div, article and section elements whose class mentions content, article,
// topic or fact; the first five per page are considered. Each keeps the
// text of its first h1-h4 as title and the first p or div (cut to 800
// characters) as content. Content of 100 characters or less and titles
// already in seen are dropped. seen is updated.
func ExtractWHO(doc *html.Node, seen map[string]bool) []provider.Advisory {
	blocks := findAll(doc, whoBlocksPerPage, func(n *html.Node) bool {
		if !isElement(n, atom.Div, atom.Article, atom.Section) {
			return false
		}
		return whoBlockClass.MatchString(attr(n, "class"))
	})

	var out []provider.Advisory
	for _, block := range blocks {
		titleNode := findFirst(block, func(n *html.Node) bool {
			return isElement(n, atom.H1, atom.H2, atom.H3, atom.H4)
		})
		if titleNode == nil {
			continue
		}
		title := textOf(titleNode)

		contentNode := findFirst(block, func(n *html.Node) bool {
			return isElement(n, atom.P, atom.Div)
		})
		if contentNode == nil {
			continue
		}
		content := compose.Truncate(textOf(contentNode), whoContentRunes)

		if title == "" || utf8.RuneCountInString(content) <= whoMinRunes || seen[title] {
			continue
		}
		seen[title] = true
		out = append(out, provider.Advisory{Title: title, Content: content})
	}
	return out
}

// ExtractMOHFW pulls advisories out of a MOHFW page. Candidates are p, li
// and div elements whose sole text mentions a health topic; of the first
// ten, those between 100 and 500 characters are kept and numbered.
func ExtractMOHFW(doc *html.Node) []provider.Advisory {
	items := findAll(doc, mohfwCandidates, func(n *html.Node) bool {
		if !isElement(n, atom.P, atom.Li, atom.Div) {
			return false
		}
		s, ok := soleString(n)
		return ok && mohfwTopic.MatchString(s)
	})

	var out []provider.Advisory
	for _, item := range items {
		text := textOf(item)
		n := utf8.RuneCountInString(text)
		if n <= mohfwMinRunes || n >= mohfwMaxRunes {
			continue
		}
		out = append(out, provider.Advisory{
			Title:   fmt.Sprintf("MOHFW Health Update %d", len(out)+1),
			Content: text,
		})
	}
	return out
}

// findAll returns up to limit descendants of root (document order) that
// satisfy match.
func findAll(root *html.Node, limit int, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if match(c) {
				out = append(out, c)
				if len(out) == limit {
					return false
				}
			}
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(root)
	return out
}

func findFirst(root *html.Node, match func(*html.Node) bool) *html.Node {
	found := findAll(root, 1, match)
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

func isElement(n *html.Node, atoms ...atom.Atom) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, a := range atoms {
		if n.DataAtom == a {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textOf joins the trimmed text nodes under n, skipping script and style.
func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(n.Data))
			return
		}
		if isElement(n, atom.Script, atom.Style) {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// soleString follows single-child chains down to a text node. Elements
// with mixed or multiple children have no sole string.
func soleString(n *html.Node) (string, bool) {
	for {
		c := n.FirstChild
		if c == nil || c.NextSibling != nil {
			return "", false
		}
		switch c.Type {
		case html.TextNode:
			return c.Data, true
		case html.ElementNode:
			n = c
		default:
			return "", false
		}
	}
}
