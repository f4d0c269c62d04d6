package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Accepted content types for ingestion. Format validation happens at the
// upload boundary; this loader only turns accepted bytes into plain text.
const (
	ContentTypeText     = "text/plain"
	ContentTypeMarkdown = "text/markdown"
	ContentTypeHTML     = "text/html"
)

// ExtractText converts raw document bytes into the plain text the splitter
// consumes. HTML is stripped of markup, scripts and styles; text and
// markdown pass through as-is.
func ExtractText(content []byte, contentType string) (string, error) {
	switch contentType {
	case ContentTypeHTML:
		return extractHTML(content)
	case ContentTypeText, ContentTypeMarkdown, "":
		return string(content), nil
	default:
		return "", fmt.Errorf("unsupported content type: %s", contentType)
	}
}

func extractHTML(content []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var b strings.Builder
	for _, line := range strings.Split(root.Text(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String(), nil
}
