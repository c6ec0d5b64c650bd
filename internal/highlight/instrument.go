package highlight

import (
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// TriggerField names the hidden input added to search forms
	TriggerField = "phrase_trigger"

	// TriggerSubmit is the value sent by an instrumented form
	TriggerSubmit = "submit"

	// TriggerEnter is the value sent by widgets intercepting the Enter key
	TriggerEnter = "enter"

	// QueryField is the search input name
	QueryField = "q"
)

const searchFormSelector = `form:has(input[name="` + QueryField + `"])`

// Instrumenter adds the trigger field to search forms. Forms it already
// handled are remembered, so later scans of the same tree skip them
type Instrumenter struct {
	mu   sync.Mutex
	seen map[*html.Node]struct{}
}

// NewInstrumenter creates an instrumenter
func NewInstrumenter() *Instrumenter {
	return &Instrumenter{seen: make(map[*html.Node]struct{})}
}

// Scan instruments every search form not yet seen and returns how many
// forms were changed
func (in *Instrumenter) Scan(root *html.Node) int {
	in.mu.Lock()
	defer in.mu.Unlock()

	changed := 0
	goquery.NewDocumentFromNode(root).Find(searchFormSelector).Each(func(_ int, s *goquery.Selection) {
		form := s.Get(0)
		if _, ok := in.seen[form]; ok {
			return
		}
		in.seen[form] = struct{}{}

		if s.Find(`input[name="` + TriggerField + `"]`).Length() > 0 {
			return
		}
		form.AppendChild(triggerInput())
		changed++
	})
	return changed
}

// Count returns the number of forms seen so far
func (in *Instrumenter) Count() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.seen)
}

// ClearInputs empties every search input and returns how many were found
func ClearInputs(root *html.Node) int {
	inputs := goquery.NewDocumentFromNode(root).Find(`input[name="` + QueryField + `"]`)
	inputs.SetAttr("value", "")
	return inputs.Length()
}

func triggerInput() *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     "input",
		DataAtom: atom.Input,
		Attr: []html.Attribute{
			{Key: "type", Val: "hidden"},
			{Key: "name", Val: TriggerField},
			{Key: "value", Val: TriggerSubmit},
		},
	}
}
