package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/sessions"

	"github.com/MrSnakeDoc/portfolio/internal/catalog"
	"github.com/MrSnakeDoc/portfolio/internal/httpserver/deps"
	"github.com/MrSnakeDoc/portfolio/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/portfolio/internal/index"
	"github.com/MrSnakeDoc/portfolio/internal/logger"
	"github.com/MrSnakeDoc/portfolio/internal/markdown"
	"github.com/MrSnakeDoc/portfolio/internal/metrics"
	"github.com/MrSnakeDoc/portfolio/internal/sources/blog"
	"github.com/MrSnakeDoc/portfolio/internal/terminal"
	"github.com/MrSnakeDoc/portfolio/internal/terminal/session"
)

type fakePublisher struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (p *fakePublisher) Publish(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.err
}

func writePage(t *testing.T, root, dir, meta, content string) {
	t.Helper()
	folder := filepath.Join(root, dir)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(folder, blog.MetaFileName), []byte(meta), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(folder, blog.ContentFileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestDeps(t *testing.T, load bool) deps.Deps {
	t.Helper()
	log := logger.New("error", false)

	root := t.TempDir()
	writePage(t, root, "hello",
		`{"title": "Hello World", "relativeUrl": "hello-world", "tags": ["Go", "Web"], "technologies": [1, 16], "date": "2024-05-01",}`,
		"# Hello\n\n- one\n- two\n")
	writePage(t, root, "series/one",
		`{"title": "Part one", "relativeUrl": "series/part-1", "tags": ["web"], "date": "2023-01-15"}`,
		"Part *one*.\n")

	idx := index.NewBlogIndex(blog.NewLoader(root, markdown.New()), log)
	if load {
		if err := idx.Reload(context.Background()); err != nil {
			t.Fatalf("Reload() error = %v", err)
		}
	}

	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default() error = %v", err)
	}

	m := metrics.New()
	start := time.Now()
	return deps.Deps{
		Logger:           log,
		StartTime:        start,
		Version:          "test",
		TimeNow:          time.Now,
		BlogIndex:        idx,
		Catalog:          cat,
		Metrics:          m,
		Dispatcher:       terminal.NewDispatcher(terminal.NewDefaultRegistry(), m),
		Sessions:         session.NewStore(10, 100, time.Hour),
		SessionCookies:   sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef")),
		TerminalMaxInput: 32,
		RateLimitBurst:   100,
		RateLimitPerMin:  60,
		SiteURL:          "https://example.com",
		SiteTitle:        "Example",
		SiteDescription:  "A test site",
		ReloadTrigger:    make(chan struct{}, 1),
	}
}

func do(t *testing.T, h http.Handler, method, target string, body url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(body.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid JSON %q: %v", rec.Body.String(), err)
	}
}

func TestProbes(t *testing.T) {
	d := newTestDeps(t, false)
	h := NewRouter(d.Logger, d)

	if rec := do(t, h, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Errorf("/healthz = %d, want 200", rec.Code)
	}

	rec := do(t, h, http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("/readyz before reload = %d, want 503", rec.Code)
	}

	if err := d.BlogIndex.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	rec = do(t, h, http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("/readyz after reload = %d, want 200", rec.Code)
	}
	var ready struct {
		Ready bool `json:"ready"`
		Pages int  `json:"pages"`
	}
	decode(t, rec, &ready)
	if !ready.Ready || ready.Pages != 2 {
		t.Errorf("/readyz = %+v", ready)
	}
}

func TestBlogPages(t *testing.T) {
	h := NewRouter(logger.New("error", false), newTestDeps(t, true))

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantSlugs  []string
	}{
		{name: "all newest first", target: "/api/blog/pages", wantStatus: http.StatusOK, wantSlugs: []string{"hello-world", "series/part-1"}},
		{name: "tag ignores case", target: "/api/blog/pages?tag=GO", wantStatus: http.StatusOK, wantSlugs: []string{"hello-world"}},
		{name: "paged", target: "/api/blog/pages?page=1&size=1", wantStatus: http.StatusOK, wantSlugs: []string{"series/part-1"}},
		{name: "past the end", target: "/api/blog/pages?page=5", wantStatus: http.StatusOK, wantSlugs: []string{}},
		{name: "unknown tag", target: "/api/blog/pages?tag=rust", wantStatus: http.StatusOK, wantSlugs: []string{}},
		{name: "bad size", target: "/api/blog/pages?size=abc", wantStatus: http.StatusBadRequest},
		{name: "size too large", target: "/api/blog/pages?size=1000", wantStatus: http.StatusBadRequest},
		{name: "negative page", target: "/api/blog/pages?page=-1", wantStatus: http.StatusBadRequest},
		{name: "last allowed page", target: "/api/blog/pages?page=1000000&size=100", wantStatus: http.StatusOK, wantSlugs: []string{}},
		{name: "page too large", target: "/api/blog/pages?page=922337203685477581&size=10", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target, nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantSlugs == nil {
				return
			}

			var resp struct {
				Pages []struct {
					RelativeURL string `json:"relativeUrl"`
				} `json:"pages"`
			}
			decode(t, rec, &resp)
			if len(resp.Pages) != len(tt.wantSlugs) {
				t.Fatalf("got %d pages, want %d", len(resp.Pages), len(tt.wantSlugs))
			}
			for i, slug := range tt.wantSlugs {
				if resp.Pages[i].RelativeURL != slug {
					t.Errorf("pages[%d] = %q, want %q", i, resp.Pages[i].RelativeURL, slug)
				}
			}
		})
	}
}

func TestBlogPage(t *testing.T) {
	h := NewRouter(logger.New("error", false), newTestDeps(t, true))

	rec := do(t, h, http.MethodGet, "/api/blog/pages/hello-world", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var page struct {
		Meta struct {
			Title string `json:"title"`
		} `json:"meta"`
		Content      string `json:"content"`
		Technologies []struct {
			Name string `json:"name"`
		} `json:"technologies"`
	}
	decode(t, rec, &page)
	if page.Meta.Title != "Hello World" {
		t.Errorf("title = %q", page.Meta.Title)
	}
	if !strings.Contains(page.Content, "<li><span>one</span></li>") {
		t.Errorf("content = %q", page.Content)
	}
	if len(page.Technologies) != 2 || page.Technologies[0].Name != "C#" {
		t.Errorf("technologies = %+v", page.Technologies)
	}

	if rec := do(t, h, http.MethodGet, "/api/blog/pages/series/part-1", nil); rec.Code != http.StatusOK {
		t.Errorf("slug with slash = %d, want 200", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/blog/pages/missing", nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing page = %d, want 404", rec.Code)
	}
}

func TestBlogTags(t *testing.T) {
	h := NewRouter(logger.New("error", false), newTestDeps(t, true))

	rec := do(t, h, http.MethodGet, "/api/blog/tags", nil)
	var resp struct {
		Tags []string `json:"tags"`
	}
	decode(t, rec, &resp)
	if strings.Join(resp.Tags, ",") != "Go,Web,web" {
		t.Errorf("tags = %v, want [Go Web web]", resp.Tags)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	h := NewRouter(logger.New("error", false), newTestDeps(t, true))

	tests := []struct {
		target     string
		wantStatus int
	}{
		{"/api/technologies", http.StatusOK},
		{"/api/technologies/csharp", http.StatusOK},
		{"/api/technologies/17", http.StatusOK},
		{"/api/technologies/cobol", http.StatusNotFound},
		{"/api/technologies/999", http.StatusNotFound},
		{"/api/experiences", http.StatusOK},
		{"/api/projects", http.StatusOK},
	}
	for _, tt := range tests {
		if rec := do(t, h, http.MethodGet, tt.target, nil); rec.Code != tt.wantStatus {
			t.Errorf("GET %s = %d, want %d", tt.target, rec.Code, tt.wantStatus)
		}
	}

	rec := do(t, h, http.MethodGet, "/api/experiences", nil)
	var experiences []struct {
		Technologies []struct {
			Name string `json:"name"`
		} `json:"technologies"`
	}
	decode(t, rec, &experiences)
	if len(experiences) == 0 {
		t.Fatal("no experiences")
	}
}

func terminalCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == handlers.TerminalCookieName {
			return c
		}
	}
	t.Fatal("terminal cookie not set")
	return nil
}

func TestTerminalSession(t *testing.T) {
	d := newTestDeps(t, true)
	h := NewRouter(d.Logger, d)

	rec := do(t, h, http.MethodPost, "/api/terminal", url.Values{"input": {"hire"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	cookie := terminalCookie(t, rec)

	rec = do(t, h, http.MethodPost, "/api/terminal", url.Values{"input": {"nope"}}, cookie)
	var resp struct {
		Lines []string `json:"lines"`
	}
	decode(t, rec, &resp)
	want := []string{"Permission granted. Hiring sequence initiated.", terminal.NotFoundLine("nope")}
	if len(resp.Lines) != len(want) {
		t.Fatalf("lines = %q, want %q", resp.Lines, want)
	}
	for i := range want {
		if resp.Lines[i] != want[i] {
			t.Errorf("lines[%d] = %q, want %q", i, resp.Lines[i], want[i])
		}
	}
	if d.Sessions.Len() != 1 {
		t.Errorf("sessions = %d, want 1", d.Sessions.Len())
	}

	rec = do(t, h, http.MethodGet, "/api/terminal", nil, cookie)
	decode(t, rec, &resp)
	if len(resp.Lines) != 2 {
		t.Errorf("GET lines = %q", resp.Lines)
	}

	// Without a cookie a visitor sees an empty terminal.
	rec = do(t, h, http.MethodGet, "/api/terminal", nil)
	decode(t, rec, &resp)
	if len(resp.Lines) != 0 {
		t.Errorf("anonymous GET lines = %q", resp.Lines)
	}

	if rec := do(t, h, http.MethodDelete, "/api/terminal", nil, cookie); rec.Code != http.StatusNoContent {
		t.Errorf("DELETE = %d, want 204", rec.Code)
	}
	rec = do(t, h, http.MethodGet, "/api/terminal", nil, cookie)
	decode(t, rec, &resp)
	if len(resp.Lines) != 0 {
		t.Errorf("lines after clear = %q", resp.Lines)
	}
}

func TestTerminalRejectsLongInput(t *testing.T) {
	d := newTestDeps(t, true)
	h := NewRouter(d.Logger, d)

	rec := do(t, h, http.MethodPost, "/api/terminal", url.Values{"input": {strings.Repeat("x", 33)}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if d.Sessions.Len() != 0 {
		t.Errorf("rejected input created a session")
	}
}

func TestTerminalRateLimit(t *testing.T) {
	d := newTestDeps(t, true)
	d.RateLimitBurst = 1
	d.RateLimitPerMin = 1
	h := NewRouter(d.Logger, d)

	if rec := do(t, h, http.MethodPost, "/api/terminal", url.Values{"input": {"skills"}}); rec.Code != http.StatusOK {
		t.Fatalf("first POST = %d, want 200", rec.Code)
	}
	rec := do(t, h, http.MethodPost, "/api/terminal", url.Values{"input": {"skills"}})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second POST = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}
}

func TestTerminalRateLimitPerSession(t *testing.T) {
	d := newTestDeps(t, true)
	d.RateLimitBurst = 1
	d.RateLimitPerMin = 1
	h := NewRouter(d.Logger, d)
	input := url.Values{"input": {"skills"}}

	// Creating a session is paid by the address bucket.
	rec := do(t, h, http.MethodPost, "/api/terminal", input)
	if rec.Code != http.StatusOK {
		t.Fatalf("first POST = %d, want 200", rec.Code)
	}
	cookie := terminalCookie(t, rec)

	// The live session has its own bucket.
	if rec := do(t, h, http.MethodPost, "/api/terminal", input, cookie); rec.Code != http.StatusOK {
		t.Fatalf("POST with session = %d, want 200", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/api/terminal", input, cookie); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second POST with session = %d, want 429", rec.Code)
	}

	// A forged cookie does not buy a fresh bucket.
	forged := &http.Cookie{Name: handlers.TerminalCookieName, Value: "forged"}
	if rec := do(t, h, http.MethodPost, "/api/terminal", input, forged); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("POST with forged cookie = %d, want 429", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/metrics", nil)
	if !strings.Contains(rec.Body.String(), `portfolio_rate_limited_total{limiter="terminal"} 2`) {
		t.Error("rate limited requests not counted")
	}
}

func TestReload(t *testing.T) {
	d := newTestDeps(t, true)
	pub := &fakePublisher{}
	d.ReloadPublisher = pub
	h := NewRouter(d.Logger, d)

	if rec := do(t, h, http.MethodPost, "/reload", nil); rec.Code != http.StatusAccepted {
		t.Fatalf("first reload = %d, want 202", rec.Code)
	}
	// The trigger is not drained, the next request finds it pending.
	if rec := do(t, h, http.MethodPost, "/reload", nil); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second reload = %d, want 429", rec.Code)
	}
	if pub.calls != 1 {
		t.Errorf("publish calls = %d, want 1", pub.calls)
	}

	<-d.ReloadTrigger
	pub.err = errors.New("redis down")
	if rec := do(t, h, http.MethodPost, "/reload", nil); rec.Code != http.StatusAccepted {
		t.Errorf("reload with failing publisher = %d, want 202", rec.Code)
	}
}

func TestAdminRestrictions(t *testing.T) {
	d := newTestDeps(t, true)
	d.AllowedCIDRS = []string{"10.0.0.0/8"}
	h := NewRouter(d.Logger, d)

	// httptest requests come from 192.0.2.1.
	for _, target := range []string{"/reload", "/infra", "/metrics", "/readyz"} {
		method := http.MethodGet
		if target == "/reload" {
			method = http.MethodPost
		}
		if rec := do(t, h, method, target, nil); rec.Code != http.StatusForbidden {
			t.Errorf("%s %s = %d, want 403", method, target, rec.Code)
		}
	}

	d.AllowedCIDRS = nil
	d.AllowedHosts = []string{"admin.example.com"}
	h = NewRouter(d.Logger, d)
	if rec := do(t, h, http.MethodGet, "/infra", nil); rec.Code != http.StatusForbidden {
		t.Errorf("/infra with wrong host = %d, want 403", rec.Code)
	}
}

func TestInfra(t *testing.T) {
	h := NewRouter(logger.New("error", false), newTestDeps(t, true))

	rec := do(t, h, http.MethodGet, "/infra", nil)
	var resp struct {
		Status     string `json:"status"`
		Components map[string]struct {
			OK          bool `json:"ok"`
			PagesLoaded *int `json:"pages_loaded"`
		} `json:"components"`
	}
	decode(t, rec, &resp)
	if resp.Status != "operational" {
		t.Errorf("status = %q, want operational", resp.Status)
	}
	blogStatus := resp.Components["blog"]
	if !blogStatus.OK || blogStatus.PagesLoaded == nil || *blogStatus.PagesLoaded != 2 {
		t.Errorf("blog component = %+v", blogStatus)
	}
	if !resp.Components["redis"].OK {
		t.Error("disabled redis should not degrade the service")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	d := newTestDeps(t, true)
	h := NewRouter(d.Logger, d)

	do(t, h, http.MethodPost, "/api/terminal", url.Values{"input": {"skills"}})

	rec := do(t, h, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("/metrics = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `portfolio_terminal_commands_total{command="skills",found="true"} 1`) {
		t.Errorf("command counter missing from:\n%s", rec.Body.String())
	}

	d.Metrics = nil
	h = NewRouter(d.Logger, d)
	if rec := do(t, h, http.MethodGet, "/metrics", nil); rec.Code != http.StatusNotFound {
		t.Errorf("/metrics when disabled = %d, want 404", rec.Code)
	}
}

func TestFeeds(t *testing.T) {
	h := NewRouter(logger.New("error", false), newTestDeps(t, true))

	rec := do(t, h, http.MethodGet, "/rss.xml", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("/rss.xml = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"<rss version=\"2.0\">",
		"<title>Example</title>",
		"<link>https://example.com/blog/hello-world</link>",
		"<category>Go</category>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("rss missing %q:\n%s", want, body)
		}
	}
	if strings.Index(body, "hello-world") > strings.Index(body, "series/part-1") {
		t.Error("rss items should be newest first")
	}

	rec = do(t, h, http.MethodGet, "/sitemap.xml", nil)
	body = rec.Body.String()
	for _, want := range []string{
		"<loc>https://example.com/</loc>",
		"<loc>https://example.com/blog</loc>",
		"<loc>https://example.com/blog/series/part-1</loc>",
		"<lastmod>2023-01-15</lastmod>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("sitemap missing %q:\n%s", want, body)
		}
	}
}

func TestNotFound(t *testing.T) {
	h := NewRouter(logger.New("error", false), newTestDeps(t, true))

	rec := do(t, h, http.MethodGet, "/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}
