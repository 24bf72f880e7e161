// Package sanitize holds the fixed catalog of markup sanitization
// policies. Each policy keeps text and a small set of allowed elements
// and strips every other tag, keeping the stripped tag's content.
package sanitize

import "github.com/microcosm-cc/bluemonday"

type Policy string

const (
	// PolicyNone leaves the markup untouched
	PolicyNone Policy = "none"
	// PolicyHighlight keeps only inline highlight elements
	PolicyHighlight Policy = "highlight"
	// PolicyList keeps highlight plus list elements
	PolicyList Policy = "list"
	// PolicyTable keeps highlight plus table elements
	PolicyTable Policy = "table"
	// PolicyCommon keeps highlight, list and table elements
	PolicyCommon Policy = "common"
)

var (
	highlightElements = []string{"b", "del", "em", "i", "ins", "mark", "s", "small", "strong", "u"}
	tableElements     = []string{"table", "caption", "colgroup", "col", "th", "thead", "tbody", "tr", "td", "tfoot"}
	listElements      = []string{"li", "ul", "ol", "dl", "dt", "dd"}
)

// the policies are read-only after construction and safe for
// concurrent use
var (
	highlightPolicy = restrictive(highlightElements)
	tablePolicy     = restrictive(highlightElements, tableElements)
	listPolicy      = restrictive(highlightElements, listElements)
	commonPolicy    = restrictive(highlightElements, tableElements, listElements)
)

func restrictive(elementSets ...[]string) *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	for _, elements := range elementSets {
		p.AllowElements(elements...)
	}
	return p
}

func (p Policy) Valid() bool {
	switch p {
	case "", PolicyNone, PolicyHighlight, PolicyList, PolicyTable, PolicyCommon:
		return true
	}
	return false
}

// Clean runs the policy over a markup string. An empty or unknown
// policy returns the input unchanged.
func (p Policy) Clean(html string) string {
	switch p {
	case PolicyHighlight:
		return highlightPolicy.Sanitize(html)
	case PolicyList:
		return listPolicy.Sanitize(html)
	case PolicyTable:
		return tablePolicy.Sanitize(html)
	case PolicyCommon:
		return commonPolicy.Sanitize(html)
	}
	return html
}
