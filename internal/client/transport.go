package client

import (
	"compress/gzip"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

const acceptEncoding = "gzip, br, zstd"

// siteTransport stamps every request with the configured User-Agent and the
// supported encodings, then decodes gzip, brotli and zstd bodies so callers
// always read plain content.
type siteTransport struct {
	next      http.RoundTripper
	userAgent string
}

func newSiteTransport(next http.RoundTripper, userAgent string) *siteTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &siteTransport{next: next, userAgent: userAgent}
}

func (t *siteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	if req.Header.Get("Accept-Encoding") == "" {
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return resp, nil
	}

	decoded, err := decodeBody(contentEncoding(resp.Header.Get("Content-Encoding")), resp.Body)
	switch {
	case errors.Is(err, io.EOF):
		// An encoded but empty body, common on error statuses
		_ = resp.Body.Close()
		resp.Body = http.NoBody
		markDecoded(resp)
		return resp, nil
	case err != nil:
		_ = resp.Body.Close()
		return nil, err
	case decoded == nil:
		return resp, nil
	}

	resp.Body = &decodedBody{ReadCloser: decoded, raw: resp.Body}
	markDecoded(resp)
	return resp, nil
}

func markDecoded(resp *http.Response) {
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
}

// decodeBody returns nil, nil when the encoding is not one it handles.
func decodeBody(encoding string, body io.Reader) (io.ReadCloser, error) {
	switch encoding {
	case "gzip":
		return gzip.NewReader(body)
	case "br":
		return io.NopCloser(brotli.NewReader(body)), nil
	case "zstd":
		zr, err := zstd.NewReader(body)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	default:
		return nil, nil
	}
}

// decodedBody closes the decoder and the raw body together.
type decodedBody struct {
	io.ReadCloser
	raw io.Closer
}

func (d *decodedBody) Close() error {
	decoderErr := d.ReadCloser.Close()
	if err := d.raw.Close(); err != nil {
		return err
	}
	return decoderErr
}

// contentEncoding returns the outermost coding of a Content-Encoding header,
// which is the last one listed.
func contentEncoding(header string) string {
	codings := strings.Split(header, ",")
	return strings.ToLower(strings.TrimSpace(codings[len(codings)-1]))
}
