package blog

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/MrSnakeDoc/portfolio/internal/domain"
)

// dateLayouts are tried in order when parsing meta.json dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseMeta decodes the content of a meta.json file. Trailing commas are
// tolerated; unknown fields are ignored.
func ParseMeta(data []byte) (domain.BlogPageMeta, error) {
	data = stripTrailingCommas(data)

	if err := validateMeta(data); err != nil {
		return domain.BlogPageMeta{}, fmt.Errorf("%w: %v", ErrInvalidMeta, err)
	}

	var raw rawMeta
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.BlogPageMeta{}, fmt.Errorf("%w: %v", ErrInvalidMeta, err)
	}

	date, err := parseDate(raw.Date)
	if err != nil {
		return domain.BlogPageMeta{}, fmt.Errorf("%w: %v", ErrInvalidMeta, err)
	}

	meta := domain.BlogPageMeta{
		Title:        strings.TrimSpace(raw.Title),
		RelativeURL:  raw.RelativeURL,
		Description:  raw.Description,
		Tags:         dedupeTags(raw.Tags),
		Technologies: make([]domain.TechnologyKind, 0, len(raw.Technologies)),
		Date:         date,
		Image:        raw.Image,
	}
	for _, n := range raw.Technologies {
		meta.Technologies = append(meta.Technologies, domain.TechnologyKind(n))
	}
	return meta, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date %q", s)
}

// dedupeTags drops blank and repeated tags, keeping the first occurrence.
// Comparison is exact: "Go" and "go" are two tags.
func dedupeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// stripTrailingCommas removes commas directly preceding a closing brace or
// bracket, outside of string literals.
func stripTrailingCommas(data []byte) []byte {
	out := make([]byte, 0, len(data))
	inString, escaped := false, false

	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		if c == '"' {
			inString = true
		}
		if c == ',' && closesAfter(data[i+1:]) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func closesAfter(rest []byte) bool {
	for _, c := range rest {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		case '}', ']':
			return true
		default:
			return false
		}
	}
	return false
}
