package models

import (
	"path/filepath"
	"strings"
)

// MediaFile is a video file whose name carries a show name and an SxxEyy marker.
type MediaFile struct {
	Path      string `json:"path"`      // Absolute path
	Extension string `json:"extension"` // Extension as found on disk, including the dot
	ShowName  string `json:"showName"`  // Lowercased prefix before the SxxEyy marker
	Season    string `json:"season"`    // Two digits, as written in the filename
	Episode   string `json:"episode"`   // Two digits, as written in the filename
}

// Stem returns the path without its extension.
func (m MediaFile) Stem() string {
	return strings.TrimSuffix(m.Path, m.Extension)
}

// SubtitlePath returns the sibling subtitle path for the given subtitle extension.
func (m MediaFile) SubtitlePath(ext string) string {
	return m.Stem() + ext
}

// Name returns the file name without directories.
func (m MediaFile) Name() string {
	return filepath.Base(m.Path)
}

// SkipReason explains why a path was not looked up
type SkipReason int

const (
	NotSkipped SkipReason = iota
	SkipWrongExtension
	SkipSubtitleExists
	SkipUnparsable
	SkipUnreadable
)

// String returns the label used in logs and metrics
func (r SkipReason) String() string {
	switch r {
	case SkipWrongExtension:
		return "wrong_extension"
	case SkipSubtitleExists:
		return "subtitle_exists"
	case SkipUnparsable:
		return "unparsable"
	case SkipUnreadable:
		return "unreadable"
	default:
		return "none"
	}
}

// Classification is the outcome of classifying a single path: either a MediaFile or a skip reason.
type Classification struct {
	Path  string
	Media MediaFile
	Skip  SkipReason
}

// Skipped reports whether the path should not be looked up.
func (c Classification) Skipped() bool {
	return c.Skip != NotSkipped
}
