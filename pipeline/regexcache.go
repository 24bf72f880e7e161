package pipeline

import (
	"regexp"
	"sync"
)

// RegexCache holds compiled patterns, one per distinct pattern string.
// A Finder owns one cache for its whole tree, so identical patterns on
// different nodes share a single compiled regex and nothing leaks
// across Finders.
type RegexCache struct {
	cache sync.Map
}

func (c *RegexCache) Get(pattern string) (*regexp.Regexp, error) {
	if cached, ok := c.cache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, errCompile := regexp.Compile(pattern)
	if errCompile != nil {
		return nil, errCompile
	}
	c.cache.Store(pattern, re)
	return re, nil
}
