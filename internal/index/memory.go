package index

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/portfolio/internal/domain"
	"github.com/MrSnakeDoc/portfolio/internal/logger"
	"github.com/MrSnakeDoc/portfolio/internal/sources/blog"
)

// PageSource produces the full set of pages for one reload.
type PageSource interface {
	Load(ctx context.Context) (*blog.Result, error)
}

// snapshot is never mutated once published.
type snapshot struct {
	pages    map[string]*domain.BlogPage // slug -> page
	sorted   []*domain.BlogPage          // date desc, then slug
	tags     []string
	loadedAt time.Time
}

// BlogIndex holds the in-memory blog content.
//
// Reload builds a new snapshot and publishes it with a single atomic swap, so
// readers see either the previous or the new content, never a mix. Reloads
// are expected to come from a single goroutine (the reloader); concurrent
// calls are safe but the last one to finish wins.
type BlogIndex struct {
	source  PageSource
	logger  logger.Logger
	current atomic.Pointer[snapshot]
}

// NewBlogIndex creates an empty index fed by source.
func NewBlogIndex(source PageSource, log logger.Logger) *BlogIndex {
	idx := &BlogIndex{
		source: source,
		logger: log,
	}
	idx.current.Store(&snapshot{pages: map[string]*domain.BlogPage{}})
	return idx
}

// Reload rescans the source and replaces the whole index. On error the
// previous content stays in place.
func (idx *BlogIndex) Reload(ctx context.Context) error {
	result, err := idx.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load blog pages: %w", err)
	}

	for _, skipped := range result.Skipped {
		idx.logger.Warn("skipping blog folder",
			logger.String("dir", skipped.Dir),
			logger.Error(skipped.Err))
	}

	next := &snapshot{
		pages:    make(map[string]*domain.BlogPage, len(result.Pages)),
		loadedAt: time.Now(),
	}
	tagSet := make(map[string]struct{})
	for _, page := range result.Pages {
		slug := page.Meta.RelativeURL
		if _, dup := next.pages[slug]; dup {
			idx.logger.Warn("duplicate blog slug, last folder wins",
				logger.String("slug", slug))
		}
		next.pages[slug] = page
	}

	// Tags come from every loaded folder, including ones whose slug was
	// taken over later. Distinct spellings are distinct tags; only
	// filtering ignores case.
	for _, page := range result.Pages {
		for _, tag := range page.Meta.Tags {
			tagSet[tag] = struct{}{}
		}
	}

	next.sorted = make([]*domain.BlogPage, 0, len(next.pages))
	for _, page := range next.pages {
		next.sorted = append(next.sorted, page)
	}
	sort.Slice(next.sorted, func(i, j int) bool {
		a, b := next.sorted[i].Meta, next.sorted[j].Meta
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.RelativeURL < b.RelativeURL
	})

	next.tags = make([]string, 0, len(tagSet))
	for tag := range tagSet {
		next.tags = append(next.tags, tag)
	}
	sort.Slice(next.tags, func(i, j int) bool {
		a, b := strings.ToLower(next.tags[i]), strings.ToLower(next.tags[j])
		if a != b {
			return a < b
		}
		return next.tags[i] < next.tags[j]
	})

	idx.current.Store(next)
	return nil
}

// GetPage returns the page whose slug is exactly slug.
func (idx *BlogIndex) GetPage(slug string) (*domain.BlogPage, bool) {
	page, ok := idx.current.Load().pages[slug]
	return page, ok
}

// GetPages returns one page of entries, newest first. A page past the end
// is empty, not an error.
func (idx *BlogIndex) GetPages(filter domain.GetPagesFilter) []*domain.BlogPage {
	filter = filter.Normalized()
	snap := idx.current.Load()

	offset := filter.Offset()
	if offset >= len(snap.sorted) {
		return []*domain.BlogPage{}
	}
	out := make([]*domain.BlogPage, 0, min(filter.PageSize, len(snap.sorted)-offset))
	for _, page := range snap.sorted {
		if filter.Tag != "" && !page.Meta.HasTag(filter.Tag) {
			continue
		}
		if offset > 0 {
			offset--
			continue
		}
		out = append(out, page)
		if len(out) == filter.PageSize {
			break
		}
	}
	return out
}

// All returns every page, newest first.
func (idx *BlogIndex) All() []*domain.BlogPage {
	return append([]*domain.BlogPage(nil), idx.current.Load().sorted...)
}

// GetTags returns the known tags, sorted.
func (idx *BlogIndex) GetTags() []string {
	return append([]string(nil), idx.current.Load().tags...)
}

// Count returns the number of indexed pages.
func (idx *BlogIndex) Count() int {
	return len(idx.current.Load().pages)
}

// TagCount returns the number of known tags.
func (idx *BlogIndex) TagCount() int {
	return len(idx.current.Load().tags)
}

// LastReload returns when the current content was loaded, zero before the
// first successful reload.
func (idx *BlogIndex) LastReload() time.Time {
	return idx.current.Load().loadedAt
}

// Ready reports whether a reload has succeeded at least once.
func (idx *BlogIndex) Ready() bool {
	return !idx.LastReload().IsZero()
}
