// Package config is the declarative schema tree a Finder is compiled
// from. A tree is loaded once, validated as a whole and then shared
// read-only across all evaluations.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/foomo/domfinder/sanitize"
)

// CastType names the coercion applied to a leaf result. The default is
// string; int and float parse the extracted text, bool is true for any
// non-empty text.
type CastType string

const (
	CastString CastType = "string"
	CastBool   CastType = "bool"
	CastInt    CastType = "int"
	CastFloat  CastType = "float"
)

// Node is one rule of the schema tree
type Node struct {
	// Name keys the result value, unique among siblings
	Name string `yaml:"name" json:"name"`
	// BasePath is the selector resolved against the current context
	// node. May be empty on the root, which then anchors at the
	// document itself, and on nodes with Inherit set.
	BasePath string `yaml:"base_path" json:"base_path"`
	// Extract names the extraction mode: text, inner_text, html,
	// inner_html, href or attr:<name>. Exclusive with Children.
	Extract string   `yaml:"extract" json:"extract"`
	Cast    CastType `yaml:"cast" json:"cast"`
	// JoinSep joins the results of a many leaf into a single string
	JoinSep string `yaml:"join_sep" json:"join_sep"`
	// Many processes every selector match instead of just the first
	Many bool `yaml:"many" json:"many"`
	// Enumerate adds an index field to array elements that are objects
	Enumerate bool `yaml:"enumerate" json:"enumerate"`
	// Inherit reuses the parent's context instead of selecting
	Inherit bool `yaml:"inherit" json:"inherit"`
	// Parent steps to the direct parent of the selection
	Parent bool `yaml:"parent" json:"parent"`
	// FirstOccurrence stops child assembly at the first non-empty child
	FirstOccurrence bool `yaml:"first_occurrence" json:"first_occurrence"`
	// RemoveSelection detaches matched nodes from the document once
	// their content is captured
	RemoveSelection bool `yaml:"remove_selection" json:"remove_selection"`
	// Flatten splices a child object into the parent object
	Flatten bool `yaml:"flatten" json:"flatten"`
	// SanitizePolicy names the policy applied to html shaped
	// extraction before the pipeline runs
	SanitizePolicy string `yaml:"sanitize_policy" json:"sanitize_policy"`
	// Pipeline entries are [proc, arg...]
	Pipeline [][]string `yaml:"pipeline" json:"pipeline"`
	Children []*Node    `yaml:"children" json:"children"`
}

func FromYAML(data []byte) (node *Node, err error) {
	node = &Node{}
	errUnmarshal := yaml.Unmarshal(data, node)
	if errUnmarshal != nil {
		return nil, errUnmarshal
	}
	return node, nil
}

func FromJSON(data []byte) (node *Node, err error) {
	node = &Node{}
	errUnmarshal := json.Unmarshal(data, node)
	if errUnmarshal != nil {
		return nil, errUnmarshal
	}
	return node, nil
}

// Get loads a schema tree from a yaml file
func Get(filename string) (node *Node, err error) {
	yamlBytes, errRead := os.ReadFile(filename)
	if errRead != nil {
		return nil, errRead
	}
	return FromYAML(yamlBytes)
}

// Validate walks the whole tree before any evaluation is possible. It
// fails fast on the first broken node, so no partially valid schema
// ever reaches a Finder.
func (n *Node) Validate() error {
	return n.validate(true)
}

func (n *Node) validate(isRoot bool) error {
	if n.Name == "" {
		return errors.New("the required name field is missing")
	}
	if n.BasePath == "" && !n.Inherit && !isRoot {
		return fmt.Errorf("node %q: base_path must not be empty", n.Name)
	}
	mustExtract := n.Extract != ""
	mustDive := len(n.Children) > 0
	if mustExtract == mustDive {
		return fmt.Errorf("node %q: exactly one of extract and children must be set", n.Name)
	}
	switch n.Cast {
	case "", CastString, CastBool, CastInt, CastFloat:
	default:
		return fmt.Errorf("node %q: unknown cast %q", n.Name, n.Cast)
	}
	if !sanitize.Policy(n.SanitizePolicy).Valid() {
		return fmt.Errorf("node %q: unknown sanitize_policy %q", n.Name, n.SanitizePolicy)
	}
	seen := map[string]struct{}{}
	for _, child := range n.Children {
		if _, ok := seen[child.Name]; ok {
			return fmt.Errorf("node %q: duplicate child name %q", n.Name, child.Name)
		}
		seen[child.Name] = struct{}{}
		if errChild := child.validate(false); errChild != nil {
			return errChild
		}
	}
	return nil
}
