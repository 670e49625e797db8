package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/athorburn/concordia/internal/model"
)

// DefaultLoCDocuments are the Library of Congress items in Lincoln's own
// words covering the five events
var DefaultLoCDocuments = []string{
	"https://www.loc.gov/item/mal0440500/",
	"https://www.loc.gov/resource/mal.0882800",
	"https://www.loc.gov/exhibits/gettysburg-address/ext/trans-nicolay-copy.html",
	"https://www.loc.gov/resource/mal.4361300",
	"https://www.loc.gov/resource/mal.4361800/",
}

const locAuthor = "Abraham Lincoln"

// LoCScraper downloads Library of Congress documents. Items expose a JSON
// API that sometimes carries a full-text transcription URL; when it does
// not, the item page's visible text is used.
type LoCScraper struct {
	fetcher *Fetcher
	logger  *zap.Logger
}

// NewLoCScraper creates a scraper backed by the given fetcher
func NewLoCScraper(fetcher *Fetcher, logger *zap.Logger) *LoCScraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoCScraper{fetcher: fetcher, logger: logger}
}

// locItemResponse is the slice of the LoC JSON API we consume
type locItemResponse struct {
	Item struct {
		Title string `json:"title"`
	} `json:"item"`
	Resources []struct {
		FulltextFile string `json:"fulltext_file"`
	} `json:"resources"`
}

// ScrapeDocument downloads and normalizes one LoC item
func (s *LoCScraper) ScrapeDocument(ctx context.Context, rawURL string) (model.NormalizedDocument, error) {
	title := ""
	text := ""

	// Exhibit pages are plain HTML with no JSON API behind them
	if !strings.Contains(rawURL, "/exhibits/") {
		if t, body, err := s.tryJSONAPI(ctx, rawURL); err != nil {
			s.logger.Debug("loc json api unavailable", zap.String("url", rawURL), zap.Error(err))
		} else {
			title, text = t, body
		}
	}

	if text == "" {
		page, err := s.fetcher.FetchWithRetry(ctx, rawURL)
		if err != nil {
			return model.NormalizedDocument{}, fmt.Errorf("loc %s: %w", rawURL, err)
		}
		visible, err := VisibleText(string(page))
		if err != nil {
			return model.NormalizedDocument{}, fmt.Errorf("loc %s: parse page: %w", rawURL, err)
		}
		text = visible
		if title == "" {
			title = pageTitle(string(page))
		}
	}

	if title == "" {
		title = "Untitled Document"
	}

	doc := model.NormalizedDocument{
		ID:     locDocumentID(rawURL),
		Title:  title,
		Author: locAuthor,
		Text:   CleanText(text),
		Source: model.SourceLoC,
		URL:    rawURL,
	}
	if err := doc.Validate(); err != nil {
		return model.NormalizedDocument{}, err
	}

	s.logger.Info("scraped loc document",
		zap.String("id", doc.ID),
		zap.String("title", doc.Title),
		zap.Int("chars", len(doc.Text)))
	return doc, nil
}

// ScrapeAll downloads the given items, skipping any that fail entirely.
// Skipped URLs are returned alongside the successes.
func (s *LoCScraper) ScrapeAll(ctx context.Context, urls []string) ([]model.NormalizedDocument, []string) {
	var docs []model.NormalizedDocument
	var skipped []string
	for _, u := range urls {
		doc, err := s.ScrapeDocument(ctx, u)
		if err != nil {
			s.logger.Warn("skipping loc document", zap.String("url", u), zap.Error(err))
			skipped = append(skipped, u)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, skipped
}

// tryJSONAPI asks the item's JSON endpoint for a full-text transcription
// file and downloads it when one exists
func (s *LoCScraper) tryJSONAPI(ctx context.Context, rawURL string) (title, text string, err error) {
	apiURL := strings.TrimRight(rawURL, "/") + "/?fo=json"
	body, err := s.fetcher.FetchWithRetry(ctx, apiURL)
	if err != nil {
		return "", "", err
	}

	var item locItemResponse
	if err := json.Unmarshal(body, &item); err != nil {
		return "", "", fmt.Errorf("decode item json: %w", err)
	}

	for _, res := range item.Resources {
		if res.FulltextFile == "" || !strings.Contains(res.FulltextFile, ".txt") {
			continue
		}
		raw, err := s.fetcher.FetchWithRetry(ctx, res.FulltextFile)
		if err != nil {
			return "", "", fmt.Errorf("fulltext file: %w", err)
		}
		return item.Item.Title, string(raw), nil
	}
	return "", "", fmt.Errorf("no fulltext file in item json")
}

// locDocumentID derives a stable document ID from the item URL
func locDocumentID(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "loc_" + rawURL
	}
	path := strings.Trim(parsed.Path, "/")
	segments := strings.Split(path, "/")
	last := segments[len(segments)-1]
	last = strings.TrimSuffix(last, ".html")
	last = strings.ReplaceAll(last, ".", "_")
	return "loc_" + last
}

// pageTitle extracts the <title> of an HTML page, or "" when absent
func pageTitle(page string) string {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return ""
	}

	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" && title == "" {
			title = strings.TrimSpace(nodeText(n))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if idx := strings.Index(title, "|"); idx >= 0 {
		title = strings.TrimSpace(title[:idx])
	}
	return title
}
