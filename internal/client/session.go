package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/Belphemur/SubGrab/internal/apperrors"
	"github.com/Belphemur/SubGrab/internal/metrics"
	"github.com/Belphemur/SubGrab/internal/models"
	"github.com/Belphemur/SubGrab/internal/parser"
)

// utf8HTML is the content type cached listing pages are parsed with; they are
// stored already decoded.
const utf8HTML = "text/html; charset=utf-8"

var errSessionClosed = errors.New("session is closed")

// Session is a single lookup: one listing fetch and at most one download,
// sharing cookies. It must not be used after Close.
type Session struct {
	client *Client
	http   *http.Client
	// primeURL is the cached listing whose cookies have not been collected yet.
	primeURL string
}

// FetchListing returns the candidates of the media file's episode listing,
// in page order. The page comes from the listing cache when present.
func (s *Session) FetchListing(ctx context.Context, media models.MediaFile) (*models.Listing, error) {
	if s.http == nil {
		return nil, errSessionClosed
	}
	c := s.client
	listingURL := c.queries.ListingURL(c.baseURL.String(), media, c.languageID)
	logger := c.logger.With().Str("url", listingURL).Str("file", media.Name()).Logger()

	page, cached := c.cachedListing(ctx, listingURL)
	if cached {
		metrics.ListingRequestsTotal.WithLabelValues(metrics.SourceCache).Inc()
		logger.Debug().Int("size", len(page)).Msg("Listing served from cache")
		s.primeURL = listingURL
	} else {
		var err error
		page, err = s.fetchListingPage(ctx, listingURL)
		if err != nil {
			return nil, err
		}
		metrics.ListingRequestsTotal.WithLabelValues(metrics.SourceNetwork).Inc()
	}

	candidates, err := c.parser.ParseHtmlWithContentType(bytes.NewReader(page), utf8HTML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing %s: %w", listingURL, err)
	}

	// Only pages that parsed are worth keeping
	if !cached && c.listings != nil {
		c.listings.Set(ctx, listingURL, page)
	}

	logger.Info().Int("candidates", len(candidates)).Bool("cached", cached).Msg("Fetched listing")
	return &models.Listing{URL: listingURL, Candidates: candidates}, nil
}

func (c *Client) cachedListing(ctx context.Context, listingURL string) ([]byte, bool) {
	if c.listings == nil {
		return nil, false
	}
	return c.listings.Get(ctx, listingURL)
}

// fetchListingPage downloads the listing and returns it decoded to UTF-8.
func (s *Session) fetchListingPage(ctx context.Context, listingURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listingURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create listing request: %w", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing %s: %w", listingURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &apperrors.ErrUnexpectedStatus{URL: listingURL, StatusCode: resp.StatusCode}
	}

	body, err := parser.NewUTF8Reader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("failed to decode listing %s: %w", listingURL, err)
	}
	page, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read listing %s: %w", listingURL, err)
	}
	return page, nil
}

// Download fetches the candidate's file with referer as the Referer header,
// which the site requires to serve it. The payload is returned untouched.
func (s *Session) Download(ctx context.Context, candidate models.SubtitleCandidate, referer string) (*models.DownloadResult, error) {
	if s.http == nil {
		return nil, errSessionClosed
	}
	if err := s.prime(ctx); err != nil {
		return nil, err
	}
	downloadURL, err := s.client.resolve(candidate.Link)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", downloadURL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &apperrors.ErrSubtitleResourceNotFound{URL: downloadURL}
	case resp.StatusCode != http.StatusOK:
		return nil, &apperrors.ErrUnexpectedStatus{URL: downloadURL, StatusCode: resp.StatusCode}
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read download %s: %w", downloadURL, err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	s.client.logger.Debug().
		Str("url", downloadURL).
		Str("contentType", contentType).
		Int("size", len(content)).
		Msg("Downloaded subtitle")

	return &models.DownloadResult{
		URL:         downloadURL,
		Content:     content,
		ContentType: contentType,
		Filename:    attachmentName(resp.Header.Get("Content-Disposition"), downloadURL),
	}, nil
}

// prime requests a listing that was served from the cache so the session
// holds the cookie the site expects on the download.
func (s *Session) prime(ctx context.Context) error {
	if s.primeURL == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.primeURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create session request: %w", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to open session on %s: %w", s.primeURL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &apperrors.ErrUnexpectedStatus{URL: s.primeURL, StatusCode: resp.StatusCode}
	}
	s.client.logger.Debug().Str("url", s.primeURL).Msg("Session cookies collected for cached listing")
	s.primeURL = ""
	return nil
}

// Close ends the session and drops its cookies.
func (s *Session) Close() error {
	s.http = nil
	return nil
}

// attachmentName returns the filename of a Content-Disposition header, or the
// last segment of the URL.
func attachmentName(disposition, downloadURL string) string {
	if _, params, err := mime.ParseMediaType(disposition); err == nil && params["filename"] != "" {
		return path.Base(params["filename"])
	}
	return path.Base(downloadURL)
}
