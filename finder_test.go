package domfinder

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foomo/domfinder/config"
	"github.com/foomo/domfinder/vo"
)

func getFinder(t *testing.T, cfgYml string) *Finder {
	cfg, errLoad := config.FromYAML([]byte(cfgYml))
	require.Nil(t, errLoad)
	finder, errFinder := NewFinder(cfg)
	require.Nil(t, errFinder)
	return finder
}

func TestNewFinderSuccess(t *testing.T) {
	cfgYml := `
name: root
base_path: html
children:
  - name: links
    base_path: a[href]
    many: true
    children:
      - name: link
        inherit: true
        extract: href
      - name: title
        inherit: true
        extract: text
      - name: domain
        inherit: true
        extract: href
        pipeline: [[regex, 'https?://([a-zA-Z0-9.-]+)/']]
`
	cfg, errLoad := config.FromYAML([]byte(cfgYml))
	require.Nil(t, errLoad)
	_, errFinder := NewFinder(cfg)
	assert.Nil(t, errFinder)
}

func TestNewFinderErrors(t *testing.T) {
	for comment, cfgYml := range map[string]string{
		"invalid selector": `
name: root
base_path: 'div[['
extract: text
`,
		"unknown extract mode": `
name: root
base_path: div
extract: markdown
`,
		"unknown pipeline proc": `
name: root
base_path: div
extract: text
pipeline: [[frobnicate]]
`,
		"pipeline missing arguments": `
name: root
base_path: html
children:
  - name: domain
    base_path: a[href]
    extract: href
    pipeline: [[regex]]
`,
		"invalid pipeline regex": `
name: root
base_path: div
extract: text
pipeline: [[regex_find, '(']]
`,
		"duplicate sibling names": `
name: root
base_path: html
children:
  - name: a
    base_path: p
    extract: text
  - name: a
    base_path: div
    extract: text
`,
	} {
		cfg, errLoad := config.FromYAML([]byte(cfgYml))
		require.Nil(t, errLoad, comment)
		_, errFinder := NewFinder(cfg)
		assert.NotNil(t, errFinder, comment)
	}
}

func TestParseRootObjectShape(t *testing.T) {
	finder := getFinder(t, `
name: all_links
base_path: html body a[href]
many: true
extract: href
`)
	res, errParse := finder.Parse(`<html><body><a href="https://example.com">example</a></body></html>`)
	require.Nil(t, errParse)

	obj, ok := res.AsObject()
	require.True(t, ok)
	assert.Equal(t, []string{"all_links"}, obj.Keys())

	link, ok := res.FromPath("all_links.0")
	require.True(t, ok)
	s, _ := link.AsString()
	assert.Equal(t, "https://example.com", s)
}

func TestManyIsAlwaysAnArray(t *testing.T) {
	finder := getFinder(t, `
name: links
base_path: a.missing
many: true
extract: href
`)
	res, errParse := finder.Parse(`<html><body><p>no links here</p></body></html>`)
	require.Nil(t, errParse)

	links, ok := res.FromPath("links")
	require.True(t, ok)
	assert.Equal(t, vo.KindArray, links.Kind())

	count, ok := res.FromPath("links.#")
	require.True(t, ok)
	n, _ := count.AsInt()
	assert.Equal(t, int64(0), n)
}

func TestSingleNoMatchIsNull(t *testing.T) {
	finder := getFinder(t, `
name: headline
base_path: h1
extract: text
`)
	res, errParse := finder.Parse(`<html><body><p>plain</p></body></html>`)
	require.Nil(t, errParse)
	headline, ok := res.FromPath("headline")
	require.True(t, ok)
	assert.True(t, headline.IsNull())
}

func TestContainerKeepsNullChildren(t *testing.T) {
	finder := getFinder(t, `
name: root
base_path: body
children:
  - name: present
    base_path: p
    extract: text
  - name: absent
    base_path: h1
    extract: text
`)
	res, errParse := finder.Parse(`<html><body><p>hello</p></body></html>`)
	require.Nil(t, errParse)

	rootValue, ok := res.FromPath("root")
	require.True(t, ok)
	obj, okObj := rootValue.AsObject()
	require.True(t, okObj)
	assert.Equal(t, []string{"present", "absent"}, obj.Keys())

	absent, ok := res.FromPath("root.absent")
	require.True(t, ok)
	assert.True(t, absent.IsNull())
}

func TestCast(t *testing.T) {
	finder := getFinder(t, `
name: root
base_path: body
children:
  - name: count
    base_path: span.count
    extract: text
    cast: int
  - name: price
    base_path: span.price
    extract: text
    cast: float
  - name: available
    base_path: span.stock
    extract: text
    cast: bool
`)
	res, errParse := finder.Parse(`<html><body>
		<span class="count">42</span>
		<span class="price">12.90</span>
		<span class="stock">yes</span>
	</body></html>`)
	require.Nil(t, errParse)

	count, _ := res.FromPath("root.count")
	i, ok := count.AsInt()
	assert.True(t, ok)
	assert.Equal(t, int64(42), i)

	price, _ := res.FromPath("root.price")
	f, ok := price.AsFloat()
	assert.True(t, ok)
	assert.Equal(t, 12.90, f)

	available, _ := res.FromPath("root.available")
	b, ok := available.AsBool()
	assert.True(t, ok)
	assert.True(t, b)
}

func TestPipelineAbsenceYieldsNull(t *testing.T) {
	finder := getFinder(t, `
name: number
base_path: p
extract: text
pipeline: [[regex_find, '\d+']]
`)
	res, errParse := finder.Parse(`<html><body><p>abc</p></body></html>`)
	require.Nil(t, errParse)
	number, ok := res.FromPath("number")
	require.True(t, ok)
	assert.True(t, number.IsNull())

	res, errParse = finder.Parse(`<html><body><p>a12b</p></body></html>`)
	require.Nil(t, errParse)
	number, _ = res.FromPath("number")
	s, ok := number.AsString()
	assert.True(t, ok)
	assert.Equal(t, "12", s)
}

func TestJoinSep(t *testing.T) {
	finder := getFinder(t, `
name: tags
base_path: li
many: true
extract: text
join_sep: ', '
`)
	res, errParse := finder.Parse(`<html><body><ul><li>a</li><li>b</li><li>c</li></ul></body></html>`)
	require.Nil(t, errParse)
	tags, ok := res.FromPath("tags")
	require.True(t, ok)
	s, okString := tags.AsString()
	require.True(t, okString)
	assert.Equal(t, "a, b, c", s)
}

func TestEnumerate(t *testing.T) {
	finder := getFinder(t, `
name: items
base_path: li
many: true
enumerate: true
children:
  - name: label
    inherit: true
    extract: text
`)
	res, errParse := finder.Parse(`<html><body><ul><li>a</li><li>b</li></ul></body></html>`)
	require.Nil(t, errParse)

	index, ok := res.FromPath("items.1.index")
	require.True(t, ok)
	i, _ := index.AsInt()
	assert.Equal(t, int64(1), i)

	label, _ := res.FromPath("items.1.label")
	s, _ := label.AsString()
	assert.Equal(t, "b", s)
}

func TestFlatten(t *testing.T) {
	finder := getFinder(t, `
name: root
base_path: body
children:
  - name: meta
    base_path: div.meta
    flatten: true
    children:
      - name: author
        base_path: span.author
        extract: text
      - name: date
        base_path: span.date
        extract: text
`)
	res, errParse := finder.Parse(`<html><body><div class="meta">
		<span class="author">jan</span><span class="date">2019-01-01</span>
	</div></body></html>`)
	require.Nil(t, errParse)

	author, ok := res.FromPath("root.author")
	require.True(t, ok)
	s, _ := author.AsString()
	assert.Equal(t, "jan", s)

	_, ok = res.FromPath("root.meta")
	assert.False(t, ok)
}

func TestFirstOccurrence(t *testing.T) {
	finder := getFinder(t, `
name: title
base_path: body
first_occurrence: true
children:
  - name: og
    base_path: meta.og-title
    extract: text
  - name: h1
    base_path: h1
    extract: text
  - name: fallback
    base_path: p
    extract: text
`)
	res, errParse := finder.Parse(`<html><body><h1>headline</h1><p>text</p></body></html>`)
	require.Nil(t, errParse)

	titleValue, ok := res.FromPath("title")
	require.True(t, ok)
	obj, okObj := titleValue.AsObject()
	require.True(t, okObj)
	// stopped after the first non-empty child, fallback never ran
	assert.Equal(t, []string{"og", "h1"}, obj.Keys())

	h1, _ := res.FromPath("title.h1")
	s, _ := h1.AsString()
	assert.Equal(t, "headline", s)
}

func TestParentSelection(t *testing.T) {
	finder := getFinder(t, `
name: card
base_path: span.mark
parent: true
extract: text
`)
	res, errParse := finder.Parse(`<html><body><div class="card">before <span class="mark">x</span> after</div></body></html>`)
	require.Nil(t, errParse)
	card, ok := res.FromPath("card")
	require.True(t, ok)
	s, _ := card.AsString()
	assert.Equal(t, "before x after", s)
}

func TestRootWithoutBasePath(t *testing.T) {
	finder := getFinder(t, `
name: page
children:
  - name: title
    base_path: title
    extract: text
`)
	res, errParse := finder.Parse(`<html><head><title>hello</title></head><body></body></html>`)
	require.Nil(t, errParse)
	title, ok := res.FromPath("page.title")
	require.True(t, ok)
	s, _ := title.AsString()
	assert.Equal(t, "hello", s)
}

func TestSanitizePolicyOnNode(t *testing.T) {
	finder := getFinder(t, `
name: snippet
base_path: p.snippet
extract: inner_html
sanitize_policy: highlight
pipeline: [[normalize_spaces]]
`)
	res, errParse := finder.Parse(`<html><body>
		<p class="snippet">  Some   <span style="color: red">spaced</span>  <b>bold</b>	text  </p>
	</body></html>`)
	require.Nil(t, errParse)
	snippet, ok := res.FromPath("snippet")
	require.True(t, ok)
	s, _ := snippet.AsString()
	assert.Equal(t, "Some spaced <b>bold</b> text", s)
}

func TestRemoveSelection(t *testing.T) {
	const adHTML = `<html><body><div class="ad">buy things</div><p>hello</p></body></html>`
	cfgYml := `
name: root
base_path: body
children:
  - name: ad
    base_path: div.ad
    extract: text
    remove_selection: true
  - name: ad_again
    base_path: div.ad
    extract: text
  - name: content
    base_path: p
    extract: text
`
	finder := getFinder(t, cfgYml)

	// against a shared document the removal is observable
	doc := getDoc(t, adHTML)
	res := finder.ParseDocument(doc)

	ad, ok := res.FromPath("root.ad")
	require.True(t, ok)
	s, _ := ad.AsString()
	assert.Equal(t, "buy things", s)

	// a later sibling does not see what an earlier one removed
	adAgain, ok := res.FromPath("root.ad_again")
	require.True(t, ok)
	assert.True(t, adAgain.IsNull())

	content, _ := res.FromPath("root.content")
	s, _ = content.AsString()
	assert.Equal(t, "hello", s)

	assert.Equal(t, 0, doc.Find("div.ad").Length())

	// Parse works on a throwaway document, repeat calls see a fresh one
	for i := 0; i < 2; i++ {
		resParse, errParse := finder.Parse(adHTML)
		require.Nil(t, errParse)
		adValue, _ := resParse.FromPath("root.ad")
		s, _ = adValue.AsString()
		assert.Equal(t, "buy things", s)
	}
}

func TestRemoveSelectionChildrenStillEvaluate(t *testing.T) {
	finder := getFinder(t, `
name: root
base_path: body
children:
  - name: teaser
    base_path: div.teaser
    remove_selection: true
    children:
      - name: link
        base_path: a
        extract: href
`)
	doc := getDoc(t, `<html><body><div class="teaser"><a href="/story">read</a></div></body></html>`)
	res := finder.ParseDocument(doc)

	link, ok := res.FromPath("root.teaser.link")
	require.True(t, ok)
	s, _ := link.AsString()
	assert.Equal(t, "/story", s)

	assert.Equal(t, 0, doc.Find("div.teaser").Length())
}

func searchFixture(blocks int) string {
	builder := strings.Builder{}
	builder.WriteString(`<html><body><div id="results">`)
	for i := 0; i < blocks; i++ {
		fmt.Fprintf(
			&builder,
			`<div class="result"><a href="https://example.com/r/%d">Result %d</a>`+
				`<p class="snippet">  Some   <span style="color: red">spaced</span>  <b>bold</b>	snippet %d  </p></div>`,
			i, i, i,
		)
	}
	builder.WriteString(`</div></body></html>`)
	return builder.String()
}

const searchSchemaYml = `
name: root
base_path: body
children:
  - name: results
    base_path: div.result
    many: true
    children:
      - name: url
        base_path: a
        extract: href
      - name: title
        base_path: a
        extract: text
      - name: snippet
        base_path: p.snippet
        extract: inner_html
        sanitize_policy: highlight
        pipeline: [[normalize_spaces]]
`

func TestSearchResultsEndToEnd(t *testing.T) {
	finder := getFinder(t, searchSchemaYml)
	res, errParse := finder.Parse(searchFixture(21))
	require.Nil(t, errParse)

	count, ok := res.FromPath("root.results.#")
	require.True(t, ok)
	n, _ := count.AsInt()
	assert.Equal(t, int64(21), n)

	url, ok := res.FromPath("root.results.0.url")
	require.True(t, ok)
	s, _ := url.AsString()
	assert.Equal(t, "https://example.com/r/0", s)

	title, _ := res.FromPath("root.results.20.title")
	s, _ = title.AsString()
	assert.Equal(t, "Result 20", s)

	snippet, _ := res.FromPath("root.results.5.snippet")
	s, _ = snippet.AsString()
	assert.Equal(t, "Some spaced <b>bold</b> snippet 5", s)

	urls, ok := res.FromPath("root.results.#.url")
	require.True(t, ok)
	items, okItems := urls.AsStrings()
	require.True(t, okItems)
	assert.Len(t, items, 21)
}

func TestConcurrentParse(t *testing.T) {
	finder := getFinder(t, searchSchemaYml)
	fixture := searchFixture(7)

	wg := sync.WaitGroup{}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				res, errParse := finder.Parse(fixture)
				assert.Nil(t, errParse)
				count, ok := res.FromPath("root.results.#")
				assert.True(t, ok)
				n, _ := count.AsInt()
				assert.Equal(t, int64(7), n)
			}
		}()
	}
	wg.Wait()
}
