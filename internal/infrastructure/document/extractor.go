// Package document turns uploaded petitions into plain text.
package document

import (
	"bytes"
	"mime"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
)

const (
	TypePlain    = "text/plain"
	TypeMarkdown = "text/markdown"
	TypeHTML     = "text/html"
)

var blockSelectors = "p, div, li, tr, h1, h2, h3, h4, h5, h6, blockquote, section, article, pre"

// Extractor converts document bytes of a known media type into text.
type Extractor struct{}

func NewExtractor() *Extractor { return &Extractor{} }

// ContentTypeFor resolves the media type of an upload. A declared type wins
// unless it is empty or application/octet-stream, in which case the file
// extension decides.
func ContentTypeFor(declared, filename string) string {
	if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "application/octet-stream" {
		return mt
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return TypePlain
	case ".md", ".markdown":
		return TypeMarkdown
	case ".html", ".htm":
		return TypeHTML
	}
	return declared
}

// Extract returns the text of data. Unsupported types fail with DOC_001 and
// documents without text with ADHERENCE_003.
func (e *Extractor) Extract(contentType string, data []byte) (string, error) {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(contentType))
	}

	var text string
	switch mt {
	case TypePlain, TypeMarkdown:
		text = string(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	case TypeHTML:
		text, err = extractHTML(data)
		if err != nil {
			return "", err
		}
	default:
		return "", errors.New(errors.ErrCodeUnsupportedDocument, "unsupported document type: "+contentType)
	}

	text = strings.TrimSpace(strings.ToValidUTF8(text, ""))
	if text == "" {
		return "", errors.New(errors.ErrCodeEmptyDocument, "document has no text")
	}
	return text, nil
}

func extractHTML(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeUnsupportedDocument, "failed to parse html")
	}
	doc.Find("script, style, noscript, head, template").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(blockSelectors).AppendHtml("\n")

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	lines := strings.Split(root.Text(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n"), nil
}

//Personal.AI order the ending
