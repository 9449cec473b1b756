package inspect

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

const (
	// MaxHeadings caps the headings returned in a summary
	MaxHeadings = 10
	// PreviewLength is the preview size in runes
	PreviewLength = 160
)

// Summary describes an app's page
type Summary struct {
	Title    string   `json:"title,omitempty"`
	Charset  string   `json:"charset"`
	Headings []string `json:"headings,omitempty"`
	Scripts  int      `json:"scripts"`
	Styles   int      `json:"styles"`
	Links    int      `json:"links"`
	Preview  string   `json:"preview,omitempty"`
	Bytes    int      `json:"bytes"`
}

// Inspector is safe for concurrent use
type Inspector struct {
	text *bluemonday.Policy
}

// New creates an inspector
func New() *Inspector {
	return &Inspector{text: bluemonday.StrictPolicy()}
}

// DetectCharset names the encoding of data. Valid UTF-8 is reported as
// such without running the detector, which guesses poorly on short ASCII.
func DetectCharset(data []byte) string {
	if utf8.Valid(data) {
		return "utf-8"
	}
	result, err := chardet.NewHtmlDetector().DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

// Summarize parses data and reports what the page contains
func (i *Inspector) Summarize(data []byte) (*Summary, error) {
	cs := DetectCharset(data)
	decoded, err := toUTF8(data, cs)
	if err != nil {
		return nil, fmt.Errorf("decode %s content: %w", cs, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(decoded))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	root, err := htmlquery.Parse(bytes.NewReader(decoded))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	s := &Summary{
		Title:   strings.TrimSpace(doc.Find("title").First().Text()),
		Charset: cs,
		Scripts: len(htmlquery.Find(root, "//script")),
		Styles:  len(htmlquery.Find(root, "//style | //link[@rel='stylesheet']")),
		Links:   len(htmlquery.Find(root, "//a[@href]")),
		Preview: i.preview(decoded),
		Bytes:   len(data),
	}

	doc.Find("h1, h2, h3").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if text := normalize(sel.Text()); text != "" {
			s.Headings = append(s.Headings, text)
		}
		return len(s.Headings) < MaxHeadings
	})

	return s, nil
}

// ContentType returns the media type to serve data with
func ContentType(data []byte) string {
	return "text/html; charset=" + DetectCharset(data)
}

func toUTF8(data []byte, cs string) ([]byte, error) {
	if cs == "utf-8" {
		return data, nil
	}
	r, err := charset.NewReader(bytes.NewReader(data), "text/html; charset="+cs)
	if err != nil {
		// Unknown label; parse the raw bytes
		return data, nil
	}
	return io.ReadAll(r)
}

// preview strips markup and returns the leading visible text
func (i *Inspector) preview(decoded []byte) string {
	text := normalize(html.UnescapeString(i.text.Sanitize(string(decoded))))
	if utf8.RuneCountInString(text) <= PreviewLength {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:PreviewLength])) + "…"
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
