package scrape

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageContent is what a scraped page contributes to a generation prompt.
type PageContent struct {
	URL           string
	Title         string
	Description   string
	Location      string
	DateHints     []string
	ScheduleHints []string
}

// PromptBlock renders the content as a compact text block for the model.
func (p PageContent) PromptBlock() string {
	var b strings.Builder
	fmt.Fprintf(&b, "URL: %s\n", p.URL)
	if p.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", p.Title)
	}
	if p.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", p.Description)
	}
	if p.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", p.Location)
	}
	if len(p.DateHints) > 0 {
		fmt.Fprintf(&b, "Dates: %s\n", strings.Join(p.DateHints, "; "))
	}
	if len(p.ScheduleHints) > 0 {
		fmt.Fprintf(&b, "Schedule: %s\n", strings.Join(p.ScheduleHints, "; "))
	}
	return strings.TrimRight(b.String(), "\n")
}

var datePattern = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2}|(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4})\b`)

// Extract pulls structured hints from an HTML page: Open Graph tags
// first, then common fallbacks.
func Extract(pageURL string, body []byte) (PageContent, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return PageContent{}, fmt.Errorf("parse page: %w", err)
	}

	p := PageContent{URL: pageURL}

	p.Title = strings.TrimSpace(doc.Find(`meta[property="og:title"]`).AttrOr("content", ""))
	if p.Title == "" {
		p.Title = normalize(doc.Find("h1").First().Text())
	}
	if p.Title == "" {
		p.Title = normalize(doc.Find("title").First().Text())
	}

	p.Description = strings.TrimSpace(doc.Find(`meta[property="og:description"]`).AttrOr("content", ""))
	if p.Description == "" {
		p.Description = strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", ""))
	}
	if p.Description == "" {
		p.Description = normalize(doc.Find("main p, article p, p").First().Text())
	}

	p.Location = normalize(doc.Find("address").First().Text())
	if p.Location == "" {
		p.Location = normalize(doc.Find(`[itemprop="location"], [class*="address"]`).First().Text())
	}

	seen := make(map[string]bool)
	doc.Find("time").Each(func(_ int, sel *goquery.Selection) {
		hint := strings.TrimSpace(sel.AttrOr("datetime", ""))
		if hint == "" {
			hint = normalize(sel.Text())
		}
		if hint != "" && !seen[hint] {
			seen[hint] = true
			p.DateHints = append(p.DateHints, hint)
		}
	})
	for _, m := range datePattern.FindAllString(doc.Text(), 4) {
		if !seen[m] {
			seen[m] = true
			p.DateHints = append(p.DateHints, m)
		}
	}

	doc.Find(`[class*="schedule"] li, [class*="lineup"] li, [class*="program"] li`).Each(func(_ int, sel *goquery.Selection) {
		if item := normalize(sel.Text()); item != "" && len(p.ScheduleHints) < 12 {
			p.ScheduleHints = append(p.ScheduleHints, item)
		}
	})

	return p, nil
}

// Scraper fetches and extracts a page, returning the prompt block.
type Scraper struct {
	fetcher *Fetcher
}

// NewScraper creates a scraper over the given fetcher.
func NewScraper(fetcher *Fetcher) *Scraper {
	return &Scraper{fetcher: fetcher}
}

// Scrape fetches url and returns its extracted content as a prompt
// block.
func (s *Scraper) Scrape(ctx context.Context, url string) (string, error) {
	body, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	p, err := Extract(url, body)
	if err != nil {
		return "", err
	}
	return p.PromptBlock(), nil
}

var spacePattern = regexp.MustCompile(`\s+`)

func normalize(s string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}
