package handlers

import (
	"encoding/xml"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/MrSnakeDoc/portfolio/internal/httpserver/deps"
	"github.com/MrSnakeDoc/portfolio/internal/logger"
)

// BlogPath is the path of the blog on the public site.
const BlogPath = "blog"

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Categories  []string `xml:"category"`
	PubDate     string   `xml:"pubDate"`
	GUID        string   `xml:"guid"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// RSS serves the blog feed, newest first.
func RSS(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pages := d.BlogIndex.All()
		items := make([]rssItem, 0, len(pages))
		for _, p := range pages {
			link := siteURL(d.SiteURL, BlogPath, p.Meta.RelativeURL)
			items = append(items, rssItem{
				Title:       p.Meta.Title,
				Link:        link,
				Description: p.Meta.Description,
				Categories:  p.Meta.Tags,
				PubDate:     p.Meta.Date.Format(time.RFC1123Z),
				GUID:        link,
			})
		}

		writeXML(w, d.Logger, "application/rss+xml; charset=utf-8", rssXML{
			Version: "2.0",
			Channel: rssChannel{
				Title:       d.SiteTitle,
				Link:        siteURL(d.SiteURL),
				Description: d.SiteDescription,
				Items:       items,
			},
		})
	}
}

// Sitemap lists the home page, the blog and every blog page.
func Sitemap(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pages := d.BlogIndex.All()
		urls := make([]sitemapURL, 0, len(pages)+2)
		urls = append(urls,
			sitemapURL{Loc: siteURL(d.SiteURL)},
			sitemapURL{Loc: siteURL(d.SiteURL, BlogPath)},
		)
		for _, p := range pages {
			urls = append(urls, sitemapURL{
				Loc:     siteURL(d.SiteURL, BlogPath, p.Meta.RelativeURL),
				LastMod: p.Meta.Date.Format("2006-01-02"),
			})
		}

		writeXML(w, d.Logger, "application/xml; charset=utf-8", sitemapURLSet{
			XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
			URLs:  urls,
		})
	}
}

func writeXML(w http.ResponseWriter, log logger.Logger, contentType string, v any) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	if err := xml.NewEncoder(w).Encode(v); err != nil {
		log.Debug("failed to write xml response", logger.Error(err))
	}
}

// siteURL joins base with segments. The result has no trailing slash
// unless it is the site root.
func siteURL(base string, segments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(segments...))
	if !strings.HasPrefix(u.Path, "/") {
		u.Path = "/" + u.Path
	}
	return u.String()
}
