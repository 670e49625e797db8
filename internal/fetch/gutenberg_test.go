package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/athorburn/concordia/internal/model"
)

const bookPage = `<html><head>
<title>The Life of Abraham Lincoln by Henry Ketcham | Project Gutenberg</title>
</head><body>
<h1>The Life of Abraham Lincoln</h1>
<a href="/ebooks/author/123"><span property="schema:author">Henry Ketcham</span></a>
</body></html>`

func bookText() string {
	body := strings.Repeat("In the year 1860 Lincoln was elected president. ", 40)
	return "License header.\n\n*** START OF THE PROJECT GUTENBERG EBOOK THE LIFE OF ABRAHAM LINCOLN ***\n\n" +
		body + "\n\n*** END OF THE PROJECT GUTENBERG EBOOK THE LIFE OF ABRAHAM LINCOLN ***\nLicense footer."
}

func gutenbergServer(t *testing.T, textPath string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ebooks/14004":
			_, _ = fmt.Fprint(w, bookPage)
		case textPath:
			_, _ = fmt.Fprint(w, bookText())
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func scraperFor(server *httptest.Server) *GutenbergScraper {
	fetcher := New(Options{Timeout: 5 * time.Second, UserAgent: "test-agent", MaxBodyBytes: 1 << 20})
	s := NewGutenbergScraper(fetcher, nil)
	s.baseURL = server.URL
	return s
}

func TestScrapeBook(t *testing.T) {
	server := gutenbergServer(t, "/files/14004/14004-0.txt")
	defer server.Close()

	doc, err := scraperFor(server).ScrapeBook(context.Background(), "14004")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if doc.ID != "gutenberg_14004" {
		t.Errorf("Unexpected ID: %s", doc.ID)
	}
	if doc.Author != "Henry Ketcham" {
		t.Errorf("Unexpected author: %s", doc.Author)
	}
	if doc.Source != model.SourceGutenberg {
		t.Errorf("Unexpected source: %s", doc.Source)
	}
	if strings.Contains(doc.Text, "License") || strings.Contains(doc.Text, "PROJECT GUTENBERG EBOOK") {
		t.Errorf("Framing not stripped: %q", doc.Text[:80])
	}
	if !strings.Contains(doc.Text, "Lincoln was elected president") {
		t.Error("Body text missing")
	}
}

func TestScrapeBook_TextURLFallback(t *testing.T) {
	// Primary files/ URLs 404; only the cache/epub pattern serves the book
	server := gutenbergServer(t, "/cache/epub/14004/pg14004.txt")
	defer server.Close()

	doc, err := scraperFor(server).ScrapeBook(context.Background(), "14004")
	if err != nil {
		t.Fatalf("Expected fallback URL to succeed, got %v", err)
	}
	if !strings.Contains(doc.Text, "Lincoln was elected president") {
		t.Error("Body text missing")
	}
}

func TestScrapeBook_NoTextAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if _, err := scraperFor(server).ScrapeBook(context.Background(), "14004"); err == nil {
		t.Fatal("Expected error when no text URL works, got nil")
	}
}

func TestScrapeAll_SkipsFailedBooks(t *testing.T) {
	server := gutenbergServer(t, "/files/14004/14004-0.txt")
	defer server.Close()

	docs, skipped := scraperFor(server).ScrapeAll(context.Background(), []string{"14004", "99999"})
	if len(docs) != 1 {
		t.Fatalf("Expected 1 document, got %d", len(docs))
	}
	if len(skipped) != 1 || skipped[0] != "99999" {
		t.Errorf("Expected book 99999 skipped, got %v", skipped)
	}
}

func TestParseGutenbergMetadata(t *testing.T) {
	title, author, err := parseGutenbergMetadata(bookPage)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if title != "The Life of Abraham Lincoln by Henry Ketcham | Project Gutenberg" {
		t.Errorf("Unexpected title: %s", title)
	}
	if author != "Henry Ketcham" {
		t.Errorf("Unexpected author: %s", author)
	}
}
