// Package pipeline is the fixed catalog of string transform procedures
// a schema node may chain after extraction. The catalog is a static
// table, resolved and validated entirely when a Finder is built, so an
// unknown procedure name, a wrong argument count or a broken regex
// pattern can never surface at evaluation time.
package pipeline

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/foomo/domfinder/sanitize"
)

const (
	ProcRegex           = "regex"
	ProcRegexFind       = "regex_find"
	ProcReplace         = "replace"
	ProcExtractJSON     = "extract_json"
	ProcTrimSpace       = "trim_space"
	ProcTrim            = "trim"
	ProcNormalizeSpaces = "normalize_spaces"
	ProcHTMLUnescape    = "html_unescape"
	ProcPolicyHighlight = "policy_highlight"
	ProcPolicyTable     = "policy_table"
	ProcPolicyList      = "policy_list"
	ProcPolicyCommon    = "policy_common"
)

// Proc transforms a value. ok == false means the value is absent from
// here on - the remaining procs are skipped and the leaf becomes Null.
type Proc func(value string) (result string, ok bool)

type procSpec struct {
	args  int
	build func(args []string, regexes *RegexCache) (Proc, error)
}

var registry = map[string]procSpec{
	ProcRegex: {args: 1, build: func(args []string, regexes *RegexCache) (Proc, error) {
		re, errCompile := regexes.Get(args[0])
		if errCompile != nil {
			return nil, errCompile
		}
		return func(value string) (string, bool) {
			groups := re.FindStringSubmatch(value)
			if groups == nil {
				return "", false
			}
			// capture groups only, joined in group order
			return strings.Join(groups[1:], ""), true
		}, nil
	}},
	ProcRegexFind: {args: 1, build: func(args []string, regexes *RegexCache) (Proc, error) {
		re, errCompile := regexes.Get(args[0])
		if errCompile != nil {
			return nil, errCompile
		}
		return func(value string) (string, bool) {
			loc := re.FindStringIndex(value)
			if loc == nil {
				return "", false
			}
			return value[loc[0]:loc[1]], true
		}, nil
	}},
	ProcReplace: {args: 2, build: func(args []string, regexes *RegexCache) (Proc, error) {
		old, new := args[0], args[1]
		return func(value string) (string, bool) {
			return strings.ReplaceAll(value, old, new), true
		}, nil
	}},
	ProcExtractJSON: {args: 1, build: func(args []string, regexes *RegexCache) (Proc, error) {
		path := args[0]
		return func(value string) (string, bool) {
			result := gjson.Get(value, path)
			if !result.Exists() {
				return "", false
			}
			return result.String(), true
		}, nil
	}},
	ProcTrimSpace: {args: 0, build: func(args []string, regexes *RegexCache) (Proc, error) {
		return func(value string) (string, bool) {
			return strings.TrimSpace(value), true
		}, nil
	}},
	ProcTrim: {args: 1, build: func(args []string, regexes *RegexCache) (Proc, error) {
		cutset := args[0]
		return func(value string) (string, bool) {
			return strings.Trim(value, cutset), true
		}, nil
	}},
	ProcNormalizeSpaces: {args: 0, build: func(args []string, regexes *RegexCache) (Proc, error) {
		return func(value string) (string, bool) {
			return strings.Join(strings.Fields(value), " "), true
		}, nil
	}},
	ProcHTMLUnescape: {args: 0, build: func(args []string, regexes *RegexCache) (Proc, error) {
		return func(value string) (string, bool) {
			return html.UnescapeString(value), true
		}, nil
	}},
	ProcPolicyHighlight: {args: 0, build: policyProc(sanitize.PolicyHighlight)},
	ProcPolicyTable:     {args: 0, build: policyProc(sanitize.PolicyTable)},
	ProcPolicyList:      {args: 0, build: policyProc(sanitize.PolicyList)},
	ProcPolicyCommon:    {args: 0, build: policyProc(sanitize.PolicyCommon)},
}

func policyProc(policy sanitize.Policy) func(args []string, regexes *RegexCache) (Proc, error) {
	return func(args []string, regexes *RegexCache) (Proc, error) {
		return func(value string) (string, bool) {
			return policy.Clean(value), true
		}, nil
	}
}

// Pipeline is an ordered chain of pre-resolved procs
type Pipeline struct {
	procs []Proc
}

// New resolves raw [proc, arg...] entries against the registry. All
// resolution errors surface here, never from Handle.
func New(raw [][]string, regexes *RegexCache) (*Pipeline, error) {
	procs := make([]Proc, 0, len(raw))
	for _, entry := range raw {
		if len(entry) == 0 {
			return nil, errors.New("pipeline entry must name a proc")
		}
		name, args := entry[0], entry[1:]
		spec, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("pipeline proc %q does not exist", name)
		}
		if len(args) != spec.args {
			return nil, fmt.Errorf("pipeline proc %q: want %d arguments, got %d", name, spec.args, len(args))
		}
		proc, errBuild := spec.build(args, regexes)
		if errBuild != nil {
			return nil, fmt.Errorf("pipeline proc %q: %w", name, errBuild)
		}
		procs = append(procs, proc)
	}
	return &Pipeline{procs: procs}, nil
}

// Handle runs the procs left to right. ok == false as soon as one proc
// reports absence.
func (p *Pipeline) Handle(value string) (result string, ok bool) {
	for _, proc := range p.procs {
		next, okProc := proc(value)
		if !okProc {
			return "", false
		}
		value = next
	}
	return value, true
}
