package services

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/nwaples/rardecode/v2"

	"github.com/Belphemur/SubGrab/internal/apperrors"
	"github.com/Belphemur/SubGrab/internal/models"
)

// maxEntrySize caps the bytes read from one archive entry.
const maxEntrySize = 10 << 20

var (
	zipMagic = []byte("PK\x03\x04")
	rarMagic = []byte("Rar!\x1a\x07")
)

// archiveEntry is a file found inside a downloaded archive.
type archiveEntry struct {
	name string
	open func() (io.Reader, error)
}

// extractSubtitle returns the bytes to write for media. Plain payloads are
// returned as they are. For a ZIP or RAR archive it picks the entry whose name
// carries the media's SxxEyy tag, else the first entry with subtitleExt.
func extractSubtitle(download *models.DownloadResult, media models.MediaFile, subtitleExt string) ([]byte, string, error) {
	content := download.Content
	switch {
	case bytes.HasPrefix(content, zipMagic):
		return extractFromZip(content, media, subtitleExt)
	case bytes.HasPrefix(content, rarMagic):
		return extractFromRar(content, media, subtitleExt)
	default:
		return content, download.Filename, nil
	}
}

func episodePattern(media models.MediaFile) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`(?i)s%se%s(?:\D|$)`,
		regexp.QuoteMeta(media.Season), regexp.QuoteMeta(media.Episode)))
}

func episodeTag(media models.MediaFile) string {
	return "S" + media.Season + "E" + media.Episode
}

func extractFromZip(content []byte, media models.MediaFile, subtitleExt string) ([]byte, string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, "", fmt.Errorf("failed to open ZIP archive: %w", err)
	}

	entries := make([]archiveEntry, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entries = append(entries, archiveEntry{
			name: f.Name,
			open: func() (io.Reader, error) {
				rc, err := f.Open()
				if err != nil {
					return nil, err
				}
				data, err := readEntry(rc)
				_ = rc.Close()
				return bytes.NewReader(data), err
			},
		})
	}

	entry, ok := chooseEntry(entries, media, subtitleExt)
	if !ok {
		return nil, "", fmt.Errorf("ZIP archive with %d entries: %w", len(entries), apperrors.NewArchiveEntryNotFoundError(episodeTag(media)))
	}
	r, err := entry.open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s from ZIP archive: %w", entry.name, err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", err
	}
	return data, path.Base(entry.name), nil
}

// extractFromRar reads the archive sequentially, keeping the first subtitle
// entry in case no entry carries the episode tag.
func extractFromRar(content []byte, media models.MediaFile, subtitleExt string) ([]byte, string, error) {
	rr, err := rardecode.NewReader(bytes.NewReader(content))
	if err != nil {
		return nil, "", fmt.Errorf("failed to open RAR archive: %w", err)
	}

	pattern := episodePattern(media)
	var fallback []byte
	var fallbackName string
	for {
		header, err := rr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to read RAR archive: %w", err)
		}
		if header.IsDir {
			continue
		}

		name := path.Base(strings.ReplaceAll(header.Name, "\\", "/"))
		isEpisode := pattern.MatchString(name)
		isSubtitle := fallback == nil && strings.EqualFold(path.Ext(name), subtitleExt)
		if !isEpisode && !isSubtitle {
			continue
		}

		data, err := readEntry(rr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s from RAR archive: %w", header.Name, err)
		}
		if isEpisode {
			return data, name, nil
		}
		fallback, fallbackName = data, name
	}

	if fallback == nil {
		return nil, "", fmt.Errorf("RAR archive: %w", apperrors.NewArchiveEntryNotFoundError(episodeTag(media)))
	}
	return fallback, fallbackName, nil
}

// chooseEntry prefers the episode-tagged entry, then the first subtitle entry.
func chooseEntry(entries []archiveEntry, media models.MediaFile, subtitleExt string) (archiveEntry, bool) {
	pattern := episodePattern(media)
	for _, e := range entries {
		if pattern.MatchString(path.Base(e.name)) {
			return e, true
		}
	}
	for _, e := range entries {
		if strings.EqualFold(path.Ext(e.name), subtitleExt) {
			return e, true
		}
	}
	return archiveEntry{}, false
}

func readEntry(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxEntrySize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxEntrySize {
		return nil, fmt.Errorf("archive entry exceeds %d bytes", maxEntrySize)
	}
	return data, nil
}
