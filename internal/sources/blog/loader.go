// Package blog reads blog page folders from the content root.
package blog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/MrSnakeDoc/portfolio/internal/domain"
)

const (
	MetaFileName    = "meta.json"
	ContentFileName = "content.md"
)

var (
	// ErrMissingFile marks a folder without meta.json or content.md.
	ErrMissingFile = errors.New("missing page file")
	// ErrInvalidMeta marks a meta.json that is not valid page metadata.
	ErrInvalidMeta = errors.New("invalid page metadata")
)

// Renderer turns markdown into HTML.
type Renderer interface {
	Render(source string) (string, error)
}

// Skipped records a page folder that was found but could not be loaded.
type Skipped struct {
	Dir string
	Err error
}

// Result is the outcome of one scan of the content root.
type Result struct {
	Pages   []*domain.BlogPage
	Skipped []Skipped
}

// Loader scans a content root for page folders.
type Loader struct {
	root     string
	renderer Renderer
}

// NewLoader creates a loader for root.
func NewLoader(root string, renderer Renderer) *Loader {
	return &Loader{
		root:     root,
		renderer: renderer,
	}
}

// Root returns the scanned directory.
func (l *Loader) Root() string {
	return l.root
}

// Load walks every directory below the root. Folders lacking one of the two
// page files are ignored; folders with broken metadata are reported in
// Result.Skipped. Any error while walking the tree fails the whole load.
func (l *Loader) Load(ctx context.Context) (*Result, error) {
	info, err := os.Stat(l.root)
	if err != nil {
		return nil, fmt.Errorf("failed to open content root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content root %s is not a directory", l.root)
	}

	result := &Result{}
	err = filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !d.IsDir() || path == l.root {
			return nil
		}

		page, err := l.LoadFolder(path)
		switch {
		case err == nil:
			result.Pages = append(result.Pages, page)
		case errors.Is(err, ErrMissingFile):
		default:
			result.Skipped = append(result.Skipped, Skipped{Dir: path, Err: err})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan content root: %w", err)
	}

	return result, nil
}

// LoadFolder builds the page stored in dir.
func (l *Loader) LoadFolder(dir string) (*domain.BlogPage, error) {
	metaPath := filepath.Join(dir, MetaFileName)
	contentPath := filepath.Join(dir, ContentFileName)
	if !isFile(metaPath) || !isFile(contentPath) {
		return nil, ErrMissingFile
	}

	rawMeta, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", MetaFileName, err)
	}
	meta, err := ParseMeta(rawMeta)
	if err != nil {
		return nil, err
	}

	rawContent, err := os.ReadFile(contentPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ContentFileName, err)
	}
	html, err := l.renderer.Render(string(rawContent))
	if err != nil {
		return nil, err
	}

	return &domain.BlogPage{
		Meta:       meta,
		RawContent: string(rawContent),
		Content:    html,
	}, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
