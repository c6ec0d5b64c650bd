package highlight

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func parse(t *testing.T, src string) *html.Node {
	t.Helper()
	root, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	return root
}

func render(t *testing.T, root *html.Node) string {
	t.Helper()
	out, err := Render(root)
	require.NoError(t, err)
	return out
}

func markers(root *html.Node) []string {
	var out []string
	goquery.NewDocumentFromNode(root).Find("span." + MarkerClass).Each(func(_ int, s *goquery.Selection) {
		out = append(out, s.Text())
	})
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		phrases []string
		want    []string
	}{
		{
			name:    "single phrase case-insensitive",
			body:    `<p>Set the Read Timeout before the read timeout fires.</p>`,
			phrases: []string{"read timeout"},
			want:    []string{"Read Timeout", "read timeout"},
		},
		{
			name:    "several phrases",
			body:    `<p>alpha beta</p><p>gamma</p>`,
			phrases: []string{"alpha", "gamma"},
			want:    []string{"alpha", "gamma"},
		},
		{
			name:    "overlap keeps later match",
			body:    `<p>abcdef</p>`,
			phrases: []string{"abcd", "cdef"},
			want:    []string{"cdef"},
		},
		{
			name:    "script and style untouched",
			body:    `<script>var timeout = 1;</script><style>.timeout{}</style><p>timeout</p>`,
			phrases: []string{"timeout"},
			want:    []string{"timeout"},
		},
		{
			name:    "non-ascii text",
			body:    `<p>Größe und GRÖSSE</p>`,
			phrases: []string{"größe"},
			want:    []string{"Größe"},
		},
		{
			name:    "no phrases",
			body:    `<p>text</p>`,
			phrases: []string{"", ""},
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := parse(t, "<html><body>"+tt.body+"</body></html>")
			n := Apply(root, tt.phrases)
			assert.Equal(t, len(tt.want), n)
			assert.Equal(t, tt.want, markers(root))
		})
	}
}

func TestApplyKeepsText(t *testing.T) {
	root := parse(t, `<html><body><p>one <b>two three</b> four</p></body></html>`)
	before := goquery.NewDocumentFromNode(root).Find("body").Text()

	Apply(root, []string{"three", "four"})
	after := goquery.NewDocumentFromNode(root).Find("body").Text()

	assert.Equal(t, before, after)
	assert.Equal(t, []string{"three", "four"}, markers(root))
}

func TestApplyIdempotent(t *testing.T) {
	root := parse(t, `<html><body><p>The read timeout and the write timeout.</p></body></html>`)

	Apply(root, []string{"timeout", "read"})
	once := render(t, root)

	Apply(root, []string{"timeout", "read"})
	twice := render(t, root)

	assert.Equal(t, once, twice)
	assert.Equal(t, []string{"read", "timeout", "timeout"}, markers(root))
}

func TestApplyMarkerMarkup(t *testing.T) {
	root := parse(t, `<html><body><p>hello</p></body></html>`)
	Apply(root, []string{"hello"})

	assert.Contains(t, render(t, root),
		`<span class="highlighted" style="background-color: yellow;">hello</span>`)
}

func TestStrip(t *testing.T) {
	src := `<html><body><p>a <span class="highlighted">b</span> c ` +
		`<span style="background-color: yellow">d</span></p></body></html>`
	root := parse(t, src)

	assert.Equal(t, 2, Strip(root))
	assert.Empty(t, markers(root))

	p := goquery.NewDocumentFromNode(root).Find("p").Get(0)
	require.NotNil(t, p.FirstChild)
	assert.Equal(t, html.TextNode, p.FirstChild.Type)
	assert.Equal(t, "a b c d", p.FirstChild.Data)
	assert.Nil(t, p.FirstChild.NextSibling)
}

func TestStripReplacesPreviousPhrases(t *testing.T) {
	root := parse(t, `<html><body><p>old phrase and new phrase</p></body></html>`)

	Apply(root, []string{"old phrase"})
	Apply(root, []string{"new phrase"})

	assert.Equal(t, []string{"new phrase"}, markers(root))
}

func TestInstrumenterScan(t *testing.T) {
	src := `<html><body>
<form action="search.html"><input type="text" name="q"></form>
<form action="login"><input name="user"></form>
<form action="search.html"><input name="q"><input type="hidden" name="phrase_trigger" value="submit"></form>
</body></html>`
	root := parse(t, src)
	in := NewInstrumenter()

	assert.Equal(t, 1, in.Scan(root))
	assert.Equal(t, 0, in.Scan(root))
	assert.Equal(t, 2, in.Count())

	triggers := goquery.NewDocumentFromNode(root).Find(`input[name="` + TriggerField + `"]`)
	assert.Equal(t, 2, triggers.Length())
	assert.Equal(t, TriggerSubmit, triggers.First().AttrOr("value", ""))
}

func TestClearInputs(t *testing.T) {
	root := parse(t, `<html><body><form><input name="q" value="&quot;&quot;"></form></body></html>`)

	assert.Equal(t, 1, ClearInputs(root))
	v, ok := goquery.NewDocumentFromNode(root).Find(`input[name="q"]`).Attr("value")
	assert.True(t, ok)
	assert.Empty(t, v)
}
