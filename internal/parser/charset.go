package parser

import (
	"io"

	"golang.org/x/net/html/charset"
)

// NewUTF8Reader converts a listing page to UTF-8 before goquery sees it.
// The encoding comes from the Content-Type header when it names a charset,
// otherwise from the page itself (BOM, <meta> tags, then a heuristic).
// Pass an empty contentType to rely on the page alone.
func NewUTF8Reader(body io.Reader, contentType string) (io.Reader, error) {
	return charset.NewReader(body, contentType)
}
