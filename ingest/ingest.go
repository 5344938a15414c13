// Package ingest reads assessment documents from disk and produces the
// normalized plain text the extraction pipeline works on. HTML documents
// are reduced to their main content and converted through markdown;
// markdown and plain text pass through normalization only.
package ingest

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	readability "github.com/go-shiori/go-readability"
)

// maxDocumentSize caps input documents at 10MB.
const maxDocumentSize = 10 * 1024 * 1024

// Pre-compiled regexes to avoid runtime compilation on every document
var (
	excessiveLinesRe = regexp.MustCompile(`\n{3,}`)
	trailingSpaceRe  = regexp.MustCompile(`(?m)[ \t]+$`)
)

// Document is a normalized assessment document.
type Document struct {
	// Filename is the source file's base name.
	Filename string

	// Title is the document title when one could be recovered.
	Title string

	// Text is the normalized plain text.
	Text string
}

// Reader loads and normalizes assessment documents.
type Reader struct {
	converter *md.Converter
	logger    *slog.Logger
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ReaderOption {
	return func(r *Reader) {
		r.logger = logger
	}
}

// NewReader creates a document reader.
func NewReader(opts ...ReaderOption) *Reader {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	r := &Reader{
		converter: converter,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadFile loads one document, dispatching on extension. Unknown
// extensions are treated as plain text.
func (r *Reader) ReadFile(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat document: %w", err)
	}
	if info.Size() > maxDocumentSize {
		return nil, fmt.Errorf("document %s is %d bytes, above the %d byte limit", path, info.Size(), maxDocumentSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	doc := &Document{Filename: filepath.Base(path)}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		if err := r.fromHTML(doc, data); err != nil {
			return nil, fmt.Errorf("convert %s: %w", path, err)
		}
	default:
		doc.Text = NormalizeText(string(data))
	}

	r.logger.Debug("Document loaded",
		"file", doc.Filename,
		"title", doc.Title,
		"chars", len(doc.Text))

	return doc, nil
}

// fromHTML isolates the main content of an HTML document and flattens it
// to markdown-shaped text. When content isolation finds nothing, the
// whole document is converted instead.
func (r *Reader) fromHTML(doc *Document, data []byte) error {
	content := string(data)

	article, err := readability.FromReader(strings.NewReader(content), &url.URL{})
	if err == nil && strings.TrimSpace(article.Content) != "" {
		doc.Title = article.Title
		content = article.Content
	} else if err != nil {
		r.logger.Debug("Content isolation failed, converting whole document", "error", err)
	}

	markdown, err := r.converter.ConvertString(content)
	if err != nil {
		return fmt.Errorf("html to markdown: %w", err)
	}

	doc.Text = NormalizeText(markdown)
	return nil
}

// NormalizeText canonicalizes line endings and whitespace so downstream
// line numbers are stable across document sources.
func NormalizeText(text string) string {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\u00a0", " ")
	text = trailingSpaceRe.ReplaceAllString(text, "")
	text = excessiveLinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
