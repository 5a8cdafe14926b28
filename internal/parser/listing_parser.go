package parser

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/Belphemur/SubGrab/internal/apperrors"
	"github.com/Belphemur/SubGrab/internal/models"
	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// downloadsPattern reads the count out of "0 times edited · 1234 Downloads · 34 sequences".
var downloadsPattern = regexp.MustCompile(`(?i)(\d+)[\s\x{00A0}]+Downloads`)

// RawRow is one listing entry exactly as found in the page, before any conversion
type RawRow struct {
	Version   string // Text of the NewsTitle cell, e.g. "Version KILLERS, 0.00 MBs"
	Downloads string // Text of the statistics cell holding the download count
	Language  string // Text of the language cell
	Href      string // href of the last download button of the entry
}

// ListingParser reads episode listing pages
type ListingParser struct {
	logger zerolog.Logger
}

// NewListingParser creates a new listing parser instance
func NewListingParser(logger zerolog.Logger) *ListingParser {
	return &ListingParser{logger: logger}
}

// ParseHtmlWithContentType decodes the page to UTF-8 using the response Content-Type
// (or the page's own charset declaration when it is empty),
// extracts the raw rows and converts them to candidates.
func (p *ListingParser) ParseHtmlWithContentType(body io.Reader, contentType string) ([]models.SubtitleCandidate, error) {
	utf8Body, err := NewUTF8Reader(body, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}

	rows, err := ExtractRows(utf8Body)
	if err != nil {
		p.logger.Error().Err(err).Msg("Failed to extract listing rows")
		return nil, err
	}

	candidates, err := ParseCandidates(rows)
	if err != nil {
		p.logger.Error().Err(err).Int("rows", len(rows)).Msg("Failed to convert listing rows")
		return nil, err
	}

	p.logger.Debug().Int("candidates", len(candidates)).Msg("Completed HTML parsing for listing")
	return candidates, nil
}

// ExtractRows returns the listing entries of a page in document order.
//
// Every entry is its own table. The layout it relies on:
//
//	tr[0]  td.NewsTitle[colspan=3]   version label
//	tr[2]  td.language, a.buttonDownload...   language and download buttons
//	tr[3]  td                        "... 1234 Downloads ..."
//
// Positional lookups live here only, so a layout change surfaces as an
// ErrListingFormat from this function.
func ExtractRows(body io.Reader) ([]RawRow, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var rows []RawRow
	var formatErr error
	doc.Find(`td.NewsTitle[colspan="3"]`).EachWithBreak(func(i int, title *goquery.Selection) bool {
		table := title.Closest("table")
		trs := table.Find("tr")
		if trs.Length() < 4 {
			formatErr = &apperrors.ErrListingFormat{Reason: fmt.Sprintf("entry %d has %d rows, want at least 4", i, trs.Length())}
			return false
		}

		href, ok := trs.Eq(2).Find(".buttonDownload").Last().Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			formatErr = &apperrors.ErrListingFormat{Reason: fmt.Sprintf("entry %d has no download link", i)}
			return false
		}

		rows = append(rows, RawRow{
			Version:   strings.TrimSpace(title.Text()),
			Downloads: strings.TrimSpace(trs.Eq(3).Find("td").First().Text()),
			Language:  strings.TrimSpace(table.Find("td.language").First().Text()),
			Href:      strings.TrimSpace(href),
		})
		return true
	})
	if formatErr != nil {
		return nil, formatErr
	}

	return rows, nil
}

// ParseCandidates converts raw rows to candidates, keeping their order.
func ParseCandidates(rows []RawRow) ([]models.SubtitleCandidate, error) {
	candidates := make([]models.SubtitleCandidate, 0, len(rows))
	for i, row := range rows {
		downloads, err := parseDownloads(row.Downloads)
		if err != nil {
			return nil, &apperrors.ErrListingFormat{Reason: fmt.Sprintf("entry %d: %v", i, err)}
		}
		candidates = append(candidates, models.SubtitleCandidate{
			Version:   row.Version,
			Downloads: downloads,
			Language:  row.Language,
			Link:      row.Href,
			Quality:   models.DetectQuality(row.Version),
		})
	}
	return candidates, nil
}

func parseDownloads(text string) (int, error) {
	matches := downloadsPattern.FindStringSubmatch(text)
	if len(matches) < 2 {
		return 0, fmt.Errorf("no download count in %q", text)
	}
	return strconv.Atoi(matches[1])
}
