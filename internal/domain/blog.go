package domain

import (
	"math"
	"strings"
	"time"
)

// DefaultPageSize is used when a filter carries no usable page size.
const DefaultPageSize = 10

// BlogPageMeta is the content of a page folder's meta.json.
type BlogPageMeta struct {
	Title string `json:"title"`

	// RelativeURL is the slug; it is unique across the index.
	RelativeURL string `json:"relativeUrl"`

	Description  string           `json:"description"`
	Tags         []string         `json:"tags"`
	Technologies []TechnologyKind `json:"technologies"`
	Date         time.Time        `json:"date"`
	Image        string           `json:"image"`
}

// HasTag reports whether the page carries tag, ignoring case.
func (m *BlogPageMeta) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// BlogPage is immutable once built; a reload replaces it wholesale.
type BlogPage struct {
	Meta BlogPageMeta `json:"meta"`

	// RawContent is the markdown source of content.md.
	RawContent string `json:"-"`

	// Content is the rendered HTML.
	Content string `json:"content"`
}

// GetPagesFilter selects a page of blog entries.
type GetPagesFilter struct {
	Tag       string // optional, case-insensitive exact match, not trimmed
	PageIndex int    // zero-based
	PageSize  int    // defaults to DefaultPageSize
}

// Normalized returns f with out-of-range values replaced by defaults.
func (f GetPagesFilter) Normalized() GetPagesFilter {
	if f.PageIndex < 0 {
		f.PageIndex = 0
	}
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	return f
}

// Offset is the number of sorted entries skipped before this page. It
// saturates at math.MaxInt instead of overflowing.
func (f GetPagesFilter) Offset() int {
	if f.PageIndex <= 0 || f.PageSize <= 0 {
		return 0
	}
	if f.PageIndex > math.MaxInt/f.PageSize {
		return math.MaxInt
	}
	return f.PageIndex * f.PageSize
}
