package stream

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPattern selects the documents the injection pipeline transforms.
const DefaultPattern = "**/*.html"

// Filter partitions a document stream by a doublestar pattern and restores
// the original order afterwards. Non-matching documents are carried through
// a run untouched.
type Filter struct {
	pattern string
}

// NewFilter compiles a filter from a doublestar pattern.
func NewFilter(pattern string) (*Filter, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid filter pattern %q", pattern)
	}
	return &Filter{pattern: pattern}, nil
}

// Match reports whether a document path matches the filter pattern.
func (f *Filter) Match(path string) bool {
	ok, err := doublestar.Match(f.pattern, path)
	return err == nil && ok
}

// Partition holds the two complementary halves of a split stream along with
// the original position of every document, so Restore can re-merge them in
// exact input order.
type Partition struct {
	Matched []Document
	Rest    []Document

	matchedAt []int
	restAt    []int
}

// Split partitions docs into matching and non-matching halves.
func (f *Filter) Split(docs []Document) *Partition {
	p := &Partition{}
	for i, doc := range docs {
		if f.Match(doc.Path) {
			p.Matched = append(p.Matched, doc)
			p.matchedAt = append(p.matchedAt, i)
		} else {
			p.Rest = append(p.Rest, doc)
			p.restAt = append(p.restAt, i)
		}
	}
	return p
}

// Restore re-merges the two halves back into the original stream order.
func (p *Partition) Restore() []Document {
	out := make([]Document, len(p.Matched)+len(p.Rest))
	for i, doc := range p.Matched {
		out[p.matchedAt[i]] = doc
	}
	for i, doc := range p.Rest {
		out[p.restAt[i]] = doc
	}
	return out
}
