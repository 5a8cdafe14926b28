package models

import "strings"

// Quality represents the video quality a subtitle was timed against
type Quality int

const (
	QualityUnknown Quality = iota
	Quality360p
	Quality480p
	Quality720p
	Quality1080p
	Quality2160p // 4K
)

// String returns the string representation of the quality
func (q Quality) String() string {
	switch q {
	case Quality360p:
		return "360p"
	case Quality480p:
		return "480p"
	case Quality720p:
		return "720p"
	case Quality1080p:
		return "1080p"
	case Quality2160p:
		return "2160p"
	default:
		return "unknown"
	}
}

// DetectQuality finds the highest resolution marker mentioned in a version label.
// Labels such as "Version WEB-TBS, 720p" or "Version 1080p.WEB.H264-GGEZ" both work.
func DetectQuality(label string) Quality {
	lower := strings.ToLower(label)
	switch {
	case strings.Contains(lower, "2160p") || strings.Contains(lower, "4k"):
		return Quality2160p
	case strings.Contains(lower, "1080p"):
		return Quality1080p
	case strings.Contains(lower, "720p"):
		return Quality720p
	case strings.Contains(lower, "480p"):
		return Quality480p
	case strings.Contains(lower, "360p"):
		return Quality360p
	default:
		return QualityUnknown
	}
}

// MarshalJSON implements json.Marshaler interface
func (q Quality) MarshalJSON() ([]byte, error) {
	return []byte(`"` + q.String() + `"`), nil
}
