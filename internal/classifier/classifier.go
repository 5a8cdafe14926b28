package classifier

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Belphemur/SubGrab/internal/models"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// showSeparators are trimmed from the end of the show name prefix.
const showSeparators = "._ -"

// episodeMarker captures everything before the last SxxEyy marker and its two digit pairs.
var episodeMarker = regexp.MustCompile(`(?i)^(.*)s(\d\d)e(\d\d)`)

// Classifier decides which paths are media files worth a subtitle lookup
type Classifier struct {
	fs                afero.Fs
	extensions        map[string]bool
	subtitleExtension string
	logger            zerolog.Logger
}

// New creates a classifier. Extensions are compared case-insensitively.
func New(fs afero.Fs, mediaExtensions []string, subtitleExtension string, logger zerolog.Logger) *Classifier {
	exts := make(map[string]bool, len(mediaExtensions))
	for _, ext := range mediaExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = true
	}

	return &Classifier{
		fs:                fs,
		extensions:        exts,
		subtitleExtension: subtitleExtension,
		logger:            logger,
	}
}

// Classify checks the extension, looks for an existing sibling subtitle and
// extracts show name, season and episode from the filename.
func (c *Classifier) Classify(path string) models.Classification {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	result := models.Classification{Path: path}

	ext := filepath.Ext(path)
	if !c.extensions[strings.ToLower(ext)] {
		result.Skip = models.SkipWrongExtension
		return result
	}

	stem := strings.TrimSuffix(path, ext)
	exists, err := afero.Exists(c.fs, stem+c.subtitleExtension)
	if err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("Cannot check for an existing subtitle, skipping")
		result.Skip = models.SkipUnreadable
		return result
	}
	if exists {
		c.logger.Debug().Str("path", path).Msg("Subtitle already present, skipping")
		result.Skip = models.SkipSubtitleExists
		return result
	}

	showName, season, episode, ok := ParseEpisode(filepath.Base(stem))
	if !ok {
		c.logger.Info().Str("path", path).Msg("Filename has no SxxEyy marker, skipping")
		result.Skip = models.SkipUnparsable
		return result
	}

	result.Media = models.MediaFile{
		Path:      path,
		Extension: ext,
		ShowName:  showName,
		Season:    season,
		Episode:   episode,
	}
	c.logger.Debug().
		Str("path", path).
		Str("showName", showName).
		Str("season", season).
		Str("episode", episode).
		Msg("Classified media file")
	return result
}

// ParseEpisode extracts the lowercased show name and the two-digit season and
// episode from a filename without extension. The last SxxEyy marker wins.
func ParseEpisode(name string) (showName, season, episode string, ok bool) {
	matches := episodeMarker.FindStringSubmatch(name)
	if len(matches) < 4 {
		return "", "", "", false
	}

	showName = strings.ToLower(strings.TrimRight(matches[1], showSeparators))
	if strings.Trim(showName, showSeparators) == "" {
		return "", "", "", false
	}
	return showName, matches[2], matches[3], true
}
