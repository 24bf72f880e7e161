// Package domfinder compiles a declarative schema tree into a reusable
// evaluator that walks an html document and assembles the extracted
// content into a generic value.
package domfinder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/foomo/domfinder/config"
	"github.com/foomo/domfinder/pipeline"
	"github.com/foomo/domfinder/sanitize"
	"github.com/foomo/domfinder/vo"
)

// indexField is the key added to array elements when enumerate is set
const indexField = "index"

// Finder is the compiled, immutable form of a schema tree. It is safe
// to share one Finder across any number of concurrent Parse calls.
// ParseDocument against one shared document is only safe concurrently
// when no node of the tree sets remove_selection - a writer must have
// the document to itself.
type Finder struct {
	name            string
	mode            extractMode
	cast            config.CastType
	joinSep         string
	many            bool
	enumerate       bool
	inherit         bool
	parent          bool
	firstOccurrence bool
	removeSelection bool
	flatten         bool
	policy          sanitize.Policy
	matcher         goquery.Matcher
	pipeline        *pipeline.Pipeline
	children        []*Finder
}

// NewFinder validates the schema tree and pre-resolves everything
// expensive - selectors, extract modes, pipelines, regex patterns. All
// schema errors surface here; evaluation can not fail.
func NewFinder(cfg *config.Node) (*Finder, error) {
	if errValidate := cfg.Validate(); errValidate != nil {
		return nil, errValidate
	}
	regexes := &pipeline.RegexCache{}
	return newFinder(cfg, regexes)
}

func newFinder(cfg *config.Node, regexes *pipeline.RegexCache) (*Finder, error) {
	mode, errMode := parseExtractMode(cfg.Extract)
	if errMode != nil {
		return nil, fmt.Errorf("node %q: %w", cfg.Name, errMode)
	}
	var matcher goquery.Matcher
	if cfg.BasePath != "" {
		sel, errCompile := cascadia.Compile(cfg.BasePath)
		if errCompile != nil {
			return nil, fmt.Errorf("node %q: invalid selector %q: %w", cfg.Name, cfg.BasePath, errCompile)
		}
		matcher = sel
		if !cfg.Many {
			// stop scanning past the first hit
			matcher = goquery.SingleMatcher(matcher)
		}
	}
	var pl *pipeline.Pipeline
	if len(cfg.Pipeline) > 0 {
		compiled, errPipeline := pipeline.New(cfg.Pipeline, regexes)
		if errPipeline != nil {
			return nil, fmt.Errorf("node %q: %w", cfg.Name, errPipeline)
		}
		pl = compiled
	}
	f := &Finder{
		name:            cfg.Name,
		mode:            mode,
		cast:            cfg.Cast,
		joinSep:         cfg.JoinSep,
		many:            cfg.Many,
		enumerate:       cfg.Enumerate,
		inherit:         cfg.Inherit,
		parent:          cfg.Parent,
		firstOccurrence: cfg.FirstOccurrence,
		removeSelection: cfg.RemoveSelection,
		flatten:         cfg.Flatten,
		policy:          sanitize.Policy(cfg.SanitizePolicy),
		matcher:         matcher,
		pipeline:        pl,
	}
	for _, childCfg := range cfg.Children {
		child, errChild := newFinder(childCfg, regexes)
		if errChild != nil {
			return nil, errChild
		}
		f.children = append(f.children, child)
	}
	return f, nil
}

// Parse evaluates the schema against a call scoped document parsed
// from the given html. remove_selection mutations stay internal to the
// call.
func (f *Finder) Parse(htmlStr string) (vo.Value, error) {
	doc, errDoc := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if errDoc != nil {
		return vo.Null(), errDoc
	}
	return f.ParseDocument(doc), nil
}

// ParseDocument evaluates the schema against a caller owned document.
// remove_selection mutations are applied to and observable in that
// document after the call returns. The result is always an object with
// exactly one key, the root node's name.
func (f *Finder) ParseDocument(doc *goquery.Document) vo.Value {
	result := vo.NewObject()
	result.Set(f.name, f.value(doc.Selection))
	return vo.FromObject(result)
}

func (f *Finder) value(context *goquery.Selection) vo.Value {
	sel := f.selection(context)
	if f.many {
		return f.manyValue(sel)
	}
	if sel.Length() == 0 {
		return vo.Null()
	}
	return f.matchValue(sel)
}

func (f *Finder) selection(context *goquery.Selection) *goquery.Selection {
	switch {
	case f.inherit:
		return context
	case f.matcher == nil:
		// root without a selector anchors at the document itself
		return context
	case f.parent:
		return context.FindMatcher(f.matcher).Parent()
	default:
		return context.FindMatcher(f.matcher)
	}
}

func (f *Finder) manyValue(sel *goquery.Selection) vo.Value {
	if len(f.children) == 0 && f.joinSep != "" {
		parts := []string{}
		for i := 0; i < sel.Length(); i++ {
			if raw, ok := f.scalar(sel.Eq(i)); ok {
				parts = append(parts, raw)
			}
		}
		return vo.String(strings.Join(parts, f.joinSep))
	}
	// zero matches is an empty array, never null
	items := make([]vo.Value, 0, sel.Length())
	for i := 0; i < sel.Length(); i++ {
		items = append(items, f.matchValue(sel.Eq(i)))
	}
	if f.enumerate {
		for i, item := range items {
			if obj, ok := item.AsObject(); ok {
				obj.Set(indexField, vo.Int(int64(i)))
			}
		}
	}
	return vo.Array(items)
}

// matchValue evaluates one matched node. Content is captured first,
// then the match is detached if remove_selection is set - the detached
// subtree stays intact, so children still evaluate against it.
func (f *Finder) matchValue(match *goquery.Selection) vo.Value {
	if len(f.children) > 0 {
		if f.removeSelection {
			match.Remove()
		}
		return f.childrenValue(match)
	}
	raw, ok := f.scalar(match)
	if f.removeSelection {
		match.Remove()
	}
	if !ok {
		return vo.Null()
	}
	return castValue(raw, f.cast)
}

func (f *Finder) childrenValue(match *goquery.Selection) vo.Value {
	obj := vo.NewObject()
	for _, child := range f.children {
		v := child.value(match)
		if child.flatten {
			if in, okIn := v.AsObject(); okIn {
				for _, key := range in.Keys() {
					childValue, _ := in.Get(key)
					obj.Set(key, childValue)
				}
			} else {
				obj.Set(child.name, v)
			}
		} else {
			obj.Set(child.name, v)
		}
		if f.firstOccurrence && !v.IsEmpty() {
			break
		}
	}
	return vo.FromObject(obj)
}

func (f *Finder) scalar(match *goquery.Selection) (string, bool) {
	raw, ok := f.mode.extract(match)
	if !ok {
		return "", false
	}
	if f.mode.markup() {
		raw = f.policy.Clean(raw)
	}
	if f.pipeline != nil {
		return f.pipeline.Handle(raw)
	}
	return raw, true
}

func castValue(raw string, cast config.CastType) vo.Value {
	switch cast {
	case config.CastBool:
		return vo.Bool(raw != "")
	case config.CastInt:
		i, _ := strconv.ParseInt(raw, 10, 64)
		return vo.Int(i)
	case config.CastFloat:
		f, _ := strconv.ParseFloat(raw, 64)
		return vo.Float(f)
	default:
		return vo.String(raw)
	}
}
