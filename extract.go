package domfinder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// extraction mode tokens
const (
	ExtractText      = "text"
	ExtractInnerText = "inner_text"
	ExtractHTML      = "html"
	ExtractInnerHTML = "inner_html"
	ExtractHref      = "href"

	extractAttrPrefix = "attr:"
)

type extractKind uint8

const (
	extractNone extractKind = iota
	extractText
	extractInnerText
	extractHTML
	extractInnerHTML
	extractAttr
)

type extractMode struct {
	kind extractKind
	attr string
}

// parseExtractMode resolves an extract token. The token set is closed -
// anything outside it is a schema error, there is no fallthrough.
func parseExtractMode(token string) (extractMode, error) {
	switch token {
	case "":
		return extractMode{kind: extractNone}, nil
	case ExtractText:
		return extractMode{kind: extractText}, nil
	case ExtractInnerText:
		return extractMode{kind: extractInnerText}, nil
	case ExtractHTML:
		return extractMode{kind: extractHTML}, nil
	case ExtractInnerHTML:
		return extractMode{kind: extractInnerHTML}, nil
	case ExtractHref:
		return extractMode{kind: extractAttr, attr: "href"}, nil
	}
	if strings.HasPrefix(token, extractAttrPrefix) {
		name := strings.TrimPrefix(token, extractAttrPrefix)
		if name == "" {
			return extractMode{}, errors.New("attr extract mode needs an attribute name")
		}
		return extractMode{kind: extractAttr, attr: name}, nil
	}
	return extractMode{}, fmt.Errorf("unknown extract mode %q", token)
}

// markup reports whether the extracted content is markup shaped and a
// sanitize policy applies to it
func (m extractMode) markup() bool {
	return m.kind == extractHTML || m.kind == extractInnerHTML
}

func (m extractMode) extract(sel *goquery.Selection) (raw string, ok bool) {
	switch m.kind {
	case extractText:
		return sel.Text(), true
	case extractInnerText:
		return innerText(sel), true
	case extractHTML:
		outer, errOuter := goquery.OuterHtml(sel)
		if errOuter != nil {
			return "", false
		}
		return outer, true
	case extractInnerHTML:
		inner, errInner := sel.Html()
		if errInner != nil {
			return "", false
		}
		return inner, true
	case extractAttr:
		return sel.Attr(m.attr)
	}
	return "", false
}

// innerText is the text of the first matched element's immediate text
// nodes, without the text of its descendants
func innerText(sel *goquery.Selection) string {
	if len(sel.Nodes) == 0 {
		return ""
	}
	builder := strings.Builder{}
	for child := sel.Nodes[0].FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			builder.WriteString(child.Data)
		}
	}
	return builder.String()
}
