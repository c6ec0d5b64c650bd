// Package highlight marks phrase occurrences in rendered pages and removes
// earlier marks. Pages are handled as parsed DOM trees.
package highlight

import (
	"io"
	"sort"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// MarkerClass is the class carried by every highlight span
	MarkerClass = "highlighted"

	// MarkerStyle is the inline style of every highlight span
	MarkerStyle = "background-color: yellow;"
)

// markerSelector matches our own markers and the ones Sphinx leaves behind
const markerSelector = `.` + MarkerClass + `, span[style*="background-color"]`

// skipped elements never have their text marked
var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Textarea: true,
}

// Parse reads an HTML document
func Parse(r io.Reader) (*html.Node, error) {
	return html.Parse(r)
}

// Render serialises a document
func Render(root *html.Node) (string, error) {
	var b strings.Builder
	if err := html.Render(&b, root); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Strip replaces every marker element with its content and merges the
// text nodes left adjacent. It returns the number of markers removed
func Strip(root *html.Node) int {
	var markers []*html.Node
	goquery.NewDocumentFromNode(root).Find(markerSelector).Each(func(_ int, s *goquery.Selection) {
		markers = append(markers, s.Nodes...)
	})

	for _, m := range markers {
		unwrap(m)
	}
	if len(markers) > 0 {
		normalize(root)
	}
	return len(markers)
}

// Apply strips earlier markers, then wraps every case-insensitive
// occurrence of each phrase in a marker span. It returns the number of
// spans inserted. Applying the same phrases twice yields the same tree
func Apply(root *html.Node, phrases []string) int {
	Strip(root)

	needles := prepare(phrases)
	if len(needles) == 0 {
		return 0
	}

	nodes := textNodes(scope(root))
	found := make(map[*html.Node][]span, len(nodes))
	for _, needle := range needles {
		for _, n := range nodes {
			if m := occurrences(n.lowered, needle); len(m) > 0 {
				found[n.node] = append(found[n.node], m...)
			}
		}
	}

	count := 0
	processed := make(map[*html.Node]struct{}, len(found))
	for _, n := range nodes {
		matches, ok := found[n.node]
		if !ok {
			continue
		}
		if _, done := processed[n.node]; done {
			continue
		}
		processed[n.node] = struct{}{}
		count += splice(n.node, n.runes, matches)
	}
	return count
}

// span is a half-open rune range
type span struct {
	start, end int
}

type textNode struct {
	node    *html.Node
	runes   []rune
	lowered []rune
}

func prepare(phrases []string) [][]rune {
	seen := make(map[string]struct{}, len(phrases))
	out := make([][]rune, 0, len(phrases))
	for _, p := range phrases {
		l := lowerRunes([]rune(p))
		if len(l) == 0 {
			continue
		}
		key := string(l)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, l)
	}
	return out
}

// lowerRunes lowercases rune by rune so offsets map back to the original
func lowerRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func scope(root *html.Node) *html.Node {
	if body := goquery.NewDocumentFromNode(root).Find("body"); body.Length() > 0 {
		return body.Get(0)
	}
	return root
}

func textNodes(root *html.Node) []textNode {
	var out []textNode
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipped[n.DataAtom] {
			return
		}
		if n.Type == html.TextNode && strings.TrimSpace(n.Data) != "" {
			rs := []rune(n.Data)
			out = append(out, textNode{node: n, runes: rs, lowered: lowerRunes(rs)})
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

// occurrences finds non-overlapping matches of needle in text
func occurrences(text, needle []rune) []span {
	var out []span
	for i := 0; i+len(needle) <= len(text); {
		if equalRunes(text[i:i+len(needle)], needle) {
			out = append(out, span{start: i, end: i + len(needle)})
			i += len(needle)
			continue
		}
		i++
	}
	return out
}

func equalRunes(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// splice replaces n with text and marker nodes. Matches are ordered by
// descending start and any match overlapping a later one is dropped
func splice(n *html.Node, runes []rune, matches []span) int {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].start != matches[j].start {
			return matches[i].start > matches[j].start
		}
		return matches[i].end > matches[j].end
	})

	kept := make([]span, 0, len(matches))
	boundary := len(runes)
	for _, m := range matches {
		if m.end > boundary {
			continue
		}
		kept = append(kept, m)
		boundary = m.start
	}

	parent := n.Parent
	next := n
	tail := len(runes)
	for _, m := range kept {
		if m.end < tail {
			t := textNodeOf(string(runes[m.end:tail]))
			parent.InsertBefore(t, next)
			next = t
		}
		mark := marker(string(runes[m.start:m.end]))
		parent.InsertBefore(mark, next)
		next = mark
		tail = m.start
	}
	if tail > 0 {
		parent.InsertBefore(textNodeOf(string(runes[:tail])), next)
	}
	parent.RemoveChild(n)
	return len(kept)
}

func marker(text string) *html.Node {
	s := &html.Node{
		Type:     html.ElementNode,
		Data:     "span",
		DataAtom: atom.Span,
		Attr: []html.Attribute{
			{Key: "class", Val: MarkerClass},
			{Key: "style", Val: MarkerStyle},
		},
	}
	s.AppendChild(textNodeOf(text))
	return s
}

func textNodeOf(data string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: data}
}

// unwrap moves the children of n into its place
func unwrap(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
	}
	parent.RemoveChild(n)
}

// normalize merges adjacent text nodes and drops empty ones
func normalize(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.TextNode {
			for next != nil && next.Type == html.TextNode {
				c.Data += next.Data
				after := next.NextSibling
				n.RemoveChild(next)
				next = after
			}
			if c.Data == "" {
				n.RemoveChild(c)
			}
		} else {
			normalize(c)
		}
		c = next
	}
}
