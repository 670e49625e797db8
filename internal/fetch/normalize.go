package fetch

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	gutenbergStart = regexp.MustCompile(`\*{3}\s*START OF TH(E|IS) PROJECT GUTENBERG EBOOK[^*]*\*{3}`)
	gutenbergEnd   = regexp.MustCompile(`\*{3}\s*END OF TH(E|IS) PROJECT GUTENBERG EBOOK[^*]*\*{3}`)
	multiBlank     = regexp.MustCompile(`\n{3,}`)
	trailingSpace  = regexp.MustCompile(`[ \t]+\n`)
)

// StripGutenbergFraming removes the boilerplate license header and footer
// that wrap every Project Gutenberg plain-text book. Text outside the
// START/END markers is publisher apparatus, not the book.
func StripGutenbergFraming(text string) string {
	if loc := gutenbergStart.FindStringIndex(text); loc != nil {
		text = text[loc[1]:]
	}
	if loc := gutenbergEnd.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
	}
	return strings.TrimSpace(text)
}

// CleanText normalizes line endings and collapses runs of blank lines so
// paragraph boundaries are a single blank line
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = trailingSpace.ReplaceAllString(text, "\n")
	text = multiBlank.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// VisibleText parses HTML and returns its visible text, skipping script,
// style, and similar non-content subtrees. Block-level elements break
// paragraphs.
func VisibleText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "head", "nav", "footer":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "div", "br", "h1", "h2", "h3", "h4", "li", "blockquote", "pre":
				buf.WriteString("\n\n")
			}
		}
	}
	walk(doc)

	return CleanText(buf.String()), nil
}

// AuthorFromTitle extracts the author from a Gutenberg page title of the
// form "Title by Author | Project Gutenberg". Returns "" when the title
// carries no author.
func AuthorFromTitle(title string) string {
	if idx := strings.Index(title, "|"); idx >= 0 {
		title = title[:idx]
	}
	title = strings.TrimSpace(title)

	idx := strings.LastIndex(title, " by ")
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(title[idx+len(" by "):])
}
