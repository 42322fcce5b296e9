package blog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/MrSnakeDoc/portfolio/internal/markdown"
)

func writePage(t *testing.T, dir, meta, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("Failed to create %s: %v", dir, err)
	}
	if meta != "" {
		if err := os.WriteFile(filepath.Join(dir, MetaFileName), []byte(meta), 0o644); err != nil {
			t.Fatalf("Failed to write meta: %v", err)
		}
	}
	if content != "" {
		if err := os.WriteFile(filepath.Join(dir, ContentFileName), []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write content: %v", err)
		}
	}
}

func TestLoaderLoad(t *testing.T) {
	root := t.TempDir()
	writePage(t, filepath.Join(root, "first"),
		`{"title":"First","relativeUrl":"first","date":"2024-01-01","tags":["go"]}`,
		"# First\n\n- a\n- b\n")
	writePage(t, filepath.Join(root, "2025", "nested"),
		`{"title":"Nested","relativeUrl":"nested","date":"2025-01-01",}`,
		"nested body\n")
	writePage(t, filepath.Join(root, "meta-only"),
		`{"title":"Meta","relativeUrl":"meta-only","date":"2025-01-01"}`, "")
	writePage(t, filepath.Join(root, "content-only"), "", "orphan\n")
	writePage(t, filepath.Join(root, "broken"), `{"title":`, "broken\n")

	loader := NewLoader(root, markdown.New())
	result, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(result.Pages) != 2 {
		t.Fatalf("Load() returned %d pages, want 2", len(result.Pages))
	}
	slugs := map[string]bool{}
	for _, page := range result.Pages {
		slugs[page.Meta.RelativeURL] = true
	}
	if !slugs["first"] || !slugs["nested"] {
		t.Errorf("Load() pages = %v, want first and nested", slugs)
	}

	if len(result.Skipped) != 1 {
		t.Fatalf("Skipped = %v, want exactly the broken folder", result.Skipped)
	}
	if filepath.Base(result.Skipped[0].Dir) != "broken" || !errors.Is(result.Skipped[0].Err, ErrInvalidMeta) {
		t.Errorf("Skipped[0] = %+v", result.Skipped[0])
	}
}

func TestLoaderLoadFolderRendersContent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "page")
	writePage(t, dir, `{"title":"P","relativeUrl":"p","date":"2024-01-01"}`, "- item\n")

	loader := NewLoader(filepath.Dir(dir), markdown.New())
	page, err := loader.LoadFolder(dir)
	if err != nil {
		t.Fatalf("LoadFolder() error = %v", err)
	}
	if page.RawContent != "- item\n" {
		t.Errorf("RawContent = %q", page.RawContent)
	}
	if page.Content != "<ul>\n<li><span>item</span></li>\n</ul>\n" {
		t.Errorf("Content = %q", page.Content)
	}
}

func TestLoaderLoadFolderMissingFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "page")
	writePage(t, dir, `{"title":"P","relativeUrl":"p","date":"2024-01-01"}`, "")

	_, err := NewLoader(filepath.Dir(dir), markdown.New()).LoadFolder(dir)
	if !errors.Is(err, ErrMissingFile) {
		t.Errorf("LoadFolder() error = %v, want ErrMissingFile", err)
	}
}

func TestLoaderLoadRootNotFound(t *testing.T) {
	loader := NewLoader("/nonexistent/path/blogs-pages", markdown.New())
	if _, err := loader.Load(context.Background()); err == nil {
		t.Error("Load() with non-existent root should return error")
	}
}

func TestLoaderLoadCanceled(t *testing.T) {
	root := t.TempDir()
	writePage(t, filepath.Join(root, "a"), `{"title":"A","relativeUrl":"a","date":"2024-01-01"}`, "a\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(root, markdown.New()).Load(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}
