package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTextPlain(t *testing.T) {
	text, err := ExtractText([]byte("hello world"), ContentTypeText)
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestExtractTextMarkdownPassesThrough(t *testing.T) {
	md := "# Title\n\nSome *content* here."
	text, err := ExtractText([]byte(md), ContentTypeMarkdown)
	require.NoError(t, err)
	assert.Equal(t, md, text)
}

func TestExtractTextDefaultsToPlain(t *testing.T) {
	text, err := ExtractText([]byte("no declared type"), "")
	require.NoError(t, err)
	assert.Equal(t, "no declared type", text)
}

func TestExtractTextHTML(t *testing.T) {
	html := `<html>
	<head><title>Page</title><style>body { color: red }</style></head>
	<body>
		<script>alert("nope")</script>
		<h1>Billing FAQ</h1>
		<p>How do I pay an invoice?</p>
		<noscript>enable scripts</noscript>
	</body>
</html>`

	text, err := ExtractText([]byte(html), ContentTypeHTML)
	require.NoError(t, err)

	assert.Contains(t, text, "Billing FAQ")
	assert.Contains(t, text, "How do I pay an invoice?")
	assert.NotContains(t, text, "alert")
	assert.NotContains(t, text, "color: red")
	assert.NotContains(t, text, "enable scripts")
}

func TestExtractTextHTMLWithoutBody(t *testing.T) {
	text, err := ExtractText([]byte("<p>fragment only</p>"), ContentTypeHTML)
	require.NoError(t, err)
	assert.Contains(t, text, "fragment only")
}

func TestExtractTextUnsupportedType(t *testing.T) {
	_, err := ExtractText([]byte("%PDF-1.4"), "application/pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported content type")
}
