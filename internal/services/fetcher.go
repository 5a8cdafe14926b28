// Package services turns a classified media file into a subtitle on disk:
// fetch the listing, auto-match a version or ask the picker, download, write.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/Belphemur/SubGrab/internal/client"
	"github.com/Belphemur/SubGrab/internal/config"
	"github.com/Belphemur/SubGrab/internal/matcher"
	"github.com/Belphemur/SubGrab/internal/metrics"
	"github.com/Belphemur/SubGrab/internal/models"
	"github.com/Belphemur/SubGrab/internal/picker"
	"github.com/Belphemur/SubGrab/internal/reporting"
)

// Fetcher processes one media file per Process call. It is safe for
// concurrent use; every call opens its own session.
type Fetcher struct {
	client      *client.Client
	matcher     *matcher.Matcher
	picker      picker.Picker
	writer      *SubtitleWriter
	languages   map[string]struct{}
	subtitleExt string
	reporter    *reporting.Reporter
	logger      zerolog.Logger
}

// NewFetcher wires a Fetcher. An empty cfg.Languages keeps every language.
func NewFetcher(cfg *config.Config, c *client.Client, m *matcher.Matcher, p picker.Picker, fs afero.Fs, reporter *reporting.Reporter, logger zerolog.Logger) *Fetcher {
	languages := make(map[string]struct{}, len(cfg.Languages))
	for _, l := range cfg.Languages {
		if l = strings.ToLower(strings.TrimSpace(l)); l != "" {
			languages[l] = struct{}{}
		}
	}
	subtitleExt := cfg.SubtitleExtension
	if subtitleExt == "" {
		subtitleExt = ".srt"
	}
	return &Fetcher{
		client:      c,
		matcher:     m,
		picker:      p,
		writer:      NewSubtitleWriter(fs),
		languages:   languages,
		subtitleExt: subtitleExt,
		reporter:    reporter,
		logger:      logger.With().Str("component", "fetcher").Logger(),
	}
}

// Process looks up and writes the subtitle for media. It never returns an
// error: failures are logged, reported and recorded in the Result.
func (f *Fetcher) Process(ctx context.Context, media models.MediaFile) models.Result {
	result := models.Result{Path: media.Path}
	logger := f.logger.With().Str("file", media.Path).Logger()

	session, err := f.client.NewSession()
	if err != nil {
		return f.fail(logger, result, "session", err)
	}
	defer session.Close()

	listing, err := session.FetchListing(ctx, media)
	if err != nil {
		return f.fail(logger, result, "listing", err)
	}

	ranked := matcher.Rank(f.filterLanguages(listing.Candidates))
	if len(ranked) == 0 {
		logger.Info().Str("url", listing.URL).Int("rows", len(listing.Candidates)).Msg("No subtitles available")
		result.Status = models.StatusNoCandidates
		return result
	}

	subtitlePath := media.SubtitlePath(f.subtitleExt)
	if candidate, ok := f.matcher.FindMatch(ranked, subtitlePath); ok {
		logger.Info().Str("version", candidate.Version).Int("downloads", candidate.Downloads).Msg("Auto-matched subtitle version")
		return f.download(ctx, logger, session, listing, media, candidate, models.StatusAutoDownloaded)
	}

	logger.Debug().Int("candidates", len(ranked)).Msg("No version matched, asking the picker")
	sel, err := f.awaitSelection(ctx, picker.Request{Title: media.Name(), Candidates: ranked})
	if err != nil {
		return f.fail(logger, result, "picker", err)
	}
	if !sel.OK {
		logger.Info().Msg("Subtitle selection declined")
		result.Status = models.StatusDeclined
		return result
	}
	return f.download(ctx, logger, session, listing, media, sel.Candidate, models.StatusManualDownloaded)
}

func (f *Fetcher) awaitSelection(ctx context.Context, req picker.Request) (picker.Selection, error) {
	select {
	case sel, ok := <-f.picker.Present(ctx, req):
		if !ok {
			return picker.Selection{}, nil
		}
		return sel, sel.Err
	case <-ctx.Done():
		return picker.Selection{}, ctx.Err()
	}
}

func (f *Fetcher) download(ctx context.Context, logger zerolog.Logger, session *client.Session, listing *models.Listing, media models.MediaFile, candidate models.SubtitleCandidate, status models.Status) models.Result {
	result := models.Result{Path: media.Path}
	mode := status.String()

	payload, err := session.Download(ctx, candidate, listing.URL)
	if err != nil {
		metrics.SubtitleDownloadsTotal.WithLabelValues(mode, "error").Inc()
		return f.fail(logger, result, "download", err)
	}

	content, entry, err := extractSubtitle(payload, media, f.subtitleExt)
	if err != nil {
		metrics.SubtitleDownloadsTotal.WithLabelValues(mode, "error").Inc()
		return f.fail(logger, result, "extract", err)
	}

	subtitlePath := media.SubtitlePath(f.subtitleExt)
	if err := f.writer.Write(subtitlePath, content); err != nil {
		metrics.SubtitleDownloadsTotal.WithLabelValues(mode, "error").Inc()
		return f.fail(logger, result, "write", err)
	}
	metrics.SubtitleDownloadsTotal.WithLabelValues(mode, "success").Inc()

	logger.Info().
		Str("version", candidate.Version).
		Str("mode", mode).
		Str("source", entry).
		Str("subtitle", subtitlePath).
		Int("size", len(content)).
		Msg("Downloaded subtitle")

	result.Status = status
	result.Candidate = &candidate
	result.WrittenPath = subtitlePath
	return result
}

func (f *Fetcher) filterLanguages(candidates []models.SubtitleCandidate) []models.SubtitleCandidate {
	if len(f.languages) == 0 {
		return candidates
	}
	kept := make([]models.SubtitleCandidate, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := f.languages[strings.ToLower(c.Language)]; ok {
			kept = append(kept, c)
		}
	}
	return kept
}

func (f *Fetcher) fail(logger zerolog.Logger, result models.Result, stage string, err error) models.Result {
	err = fmt.Errorf("%s: %w", stage, err)
	logger.Error().Err(err).Str("stage", stage).Msg("Failed to fetch subtitle")
	f.reporter.Capture(err, map[string]string{"stage": stage, "file": result.Path})
	result.Status = models.StatusFailed
	result.Err = err
	return result
}
