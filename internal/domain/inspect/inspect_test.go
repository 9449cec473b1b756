package inspect

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<html><head><title> Demo App </title>
<style>p { color: red }</style><link rel="stylesheet" href="a.css"></head>
<body><h1>Hello   there</h1><h2>Second</h2>
<p>Some &amp; text</p><a href="/x">x</a><a name="anchor">y</a>
<script>alert(1)</script></body></html>`

func TestSummarize(t *testing.T) {
	s, err := New().Summarize([]byte(samplePage))
	require.NoError(t, err)

	assert.Equal(t, "Demo App", s.Title)
	assert.Equal(t, "utf-8", s.Charset)
	assert.Equal(t, []string{"Hello there", "Second"}, s.Headings)
	assert.Equal(t, 1, s.Scripts)
	assert.Equal(t, 2, s.Styles)
	assert.Equal(t, 1, s.Links)
	assert.Equal(t, len(samplePage), s.Bytes)
	assert.Contains(t, s.Preview, "Some & text")
	assert.NotContains(t, s.Preview, "alert")
	assert.NotContains(t, s.Preview, "<")
}

func TestSummarizePlaceholder(t *testing.T) {
	s, err := New().Summarize([]byte("<html><body><h1>Hello from demo!</h1></body></html>"))
	require.NoError(t, err)

	assert.Empty(t, s.Title)
	assert.Equal(t, []string{"Hello from demo!"}, s.Headings)
	assert.Equal(t, "Hello from demo!", s.Preview)
}

func TestSummarizeEmpty(t *testing.T) {
	s, err := New().Summarize(nil)
	require.NoError(t, err)
	assert.Zero(t, s.Bytes)
	assert.Empty(t, s.Preview)
}

func TestPreviewIsTruncated(t *testing.T) {
	page := "<p>" + strings.Repeat("word ", 100) + "</p>"
	s, err := New().Summarize([]byte(page))
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(s.Preview, "…"))
	assert.LessOrEqual(t, utf8.RuneCountInString(s.Preview), PreviewLength+1)
}

func TestLegacyEncoding(t *testing.T) {
	// Latin-1 bytes are not valid UTF-8
	page := []byte("<html><head><title>Caf\xe9 cr\xe8me</title></head><body><p>" +
		strings.Repeat("Le caf\xe9 est tr\xe8s bon et la cr\xe8me br\xfbl\xe9e aussi. ", 20) +
		"</p></body></html>")
	require.False(t, utf8.Valid(page))

	s, err := New().Summarize(page)
	require.NoError(t, err)
	assert.NotEqual(t, "utf-8", s.Charset)
	assert.True(t, utf8.ValidString(s.Title))
	assert.True(t, utf8.ValidString(s.Preview))
	assert.Equal(t, "text/html; charset="+s.Charset, ContentType(page))
}

func TestContentTypeUTF8(t *testing.T) {
	assert.Equal(t, "text/html; charset=utf-8", ContentType([]byte("<p>héllo</p>")))
}
