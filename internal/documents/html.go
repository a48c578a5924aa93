package documents

import (
	"bytes"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// htmlSniffLimit bounds how much of a non-PDF body is parsed for a title
const htmlSniffLimit = 64 << 10

// looksLikeHTML reports whether a body is an HTML page. FDA hosts answer some
// missing documents with a 200 and an error page.
func looksLikeHTML(contentType string, head []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	lower := bytes.ToLower(bytes.TrimSpace(head))
	return bytes.HasPrefix(lower, []byte("<!doctype html")) ||
		bytes.HasPrefix(lower, []byte("<html")) ||
		bytes.Contains(lower, []byte("<head"))
}

// htmlTitle returns the trimmed <title> of an HTML document, or ""
func htmlTitle(r io.Reader) string {
	doc, err := goquery.NewDocumentFromReader(io.LimitReader(r, htmlSniffLimit))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Find("title").First().Text()), " ")
}
