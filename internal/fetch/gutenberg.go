package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/athorburn/concordia/internal/model"
)

const gutenbergBase = "https://www.gutenberg.org"

// DefaultGutenbergBooks are the Lincoln biographies and memoirs by other
// authors that form the comparison corpus
var DefaultGutenbergBooks = []string{"6812", "6811", "12801", "14004", "18379"}

// GutenbergScraper downloads Project Gutenberg books and normalizes them
// into documents. Each book yields one NormalizedDocument with the license
// framing stripped.
type GutenbergScraper struct {
	fetcher *Fetcher
	baseURL string
	logger  *zap.Logger
}

// NewGutenbergScraper creates a scraper backed by the given fetcher
func NewGutenbergScraper(fetcher *Fetcher, logger *zap.Logger) *GutenbergScraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GutenbergScraper{fetcher: fetcher, baseURL: gutenbergBase, logger: logger}
}

// ScrapeBook downloads one book's metadata and plain text
func (s *GutenbergScraper) ScrapeBook(ctx context.Context, bookID string) (model.NormalizedDocument, error) {
	pageURL := fmt.Sprintf("%s/ebooks/%s", s.baseURL, bookID)

	title, author := fmt.Sprintf("Book %s", bookID), ""
	if page, err := s.fetcher.FetchWithRetry(ctx, pageURL); err != nil {
		s.logger.Warn("gutenberg metadata fetch failed",
			zap.String("book_id", bookID), zap.Error(err))
	} else if t, a, err := parseGutenbergMetadata(string(page)); err != nil {
		s.logger.Warn("gutenberg metadata parse failed",
			zap.String("book_id", bookID), zap.Error(err))
	} else {
		if t != "" {
			title = t
		}
		author = a
	}

	text, err := s.downloadText(ctx, bookID)
	if err != nil {
		return model.NormalizedDocument{}, fmt.Errorf("book %s: %w", bookID, err)
	}

	doc := model.NormalizedDocument{
		ID:     "gutenberg_" + bookID,
		Title:  title,
		Author: author,
		Text:   CleanText(StripGutenbergFraming(text)),
		Source: model.SourceGutenberg,
		URL:    pageURL,
	}
	if doc.Author == "" {
		doc.Author = AuthorFromTitle(title)
	}
	if err := doc.Validate(); err != nil {
		return model.NormalizedDocument{}, err
	}

	s.logger.Info("scraped gutenberg book",
		zap.String("book_id", bookID),
		zap.String("title", doc.Title),
		zap.String("author", doc.Author),
		zap.Int("chars", len(doc.Text)))
	return doc, nil
}

// ScrapeAll downloads the given books, skipping any that fail entirely.
// Skipped book IDs are returned alongside the successes.
func (s *GutenbergScraper) ScrapeAll(ctx context.Context, bookIDs []string) ([]model.NormalizedDocument, []string) {
	var docs []model.NormalizedDocument
	var skipped []string
	for _, id := range bookIDs {
		doc, err := s.ScrapeBook(ctx, id)
		if err != nil {
			s.logger.Warn("skipping gutenberg book", zap.String("book_id", id), zap.Error(err))
			skipped = append(skipped, id)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, skipped
}

// downloadText tries the plain-text URL patterns Gutenberg publishes books
// under, in order of preference
func (s *GutenbergScraper) downloadText(ctx context.Context, bookID string) (string, error) {
	candidates := []string{
		fmt.Sprintf("%s/files/%s/%s-0.txt", s.baseURL, bookID, bookID),
		fmt.Sprintf("%s/files/%s/%s.txt", s.baseURL, bookID, bookID),
		fmt.Sprintf("%s/cache/epub/%s/pg%s.txt", s.baseURL, bookID, bookID),
	}

	var lastErr error
	for _, u := range candidates {
		body, err := s.fetcher.FetchWithRetry(ctx, u)
		if err != nil {
			lastErr = err
			continue
		}
		// A real book body, not an error page
		if len(body) > 1000 {
			return string(body), nil
		}
		lastErr = fmt.Errorf("%s: body too short (%d bytes)", u, len(body))
	}
	if lastErr == nil {
		lastErr = errors.New("no text URL candidates")
	}
	return "", fmt.Errorf("download text: %w", lastErr)
}

// parseGutenbergMetadata pulls title and author out of a book's landing
// page. Author comes from the schema.org markup when present, otherwise
// from an author catalog link.
func parseGutenbergMetadata(page string) (title, author string, err error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", "", err
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "title" && title == "":
				title = strings.TrimSpace(nodeText(n))
			case n.Data == "span" && attrVal(n, "property") == "schema:author" && author == "":
				author = strings.TrimSpace(nodeText(n))
			case n.Data == "a" && author == "" &&
				strings.Contains(attrVal(n, "href"), "/ebooks/author/"):
				author = strings.TrimSpace(nodeText(n))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return title, author, nil
}

func nodeText(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
