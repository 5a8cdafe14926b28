package models

// Status is the final state of one media file after processing
type Status int

const (
	StatusSkipped Status = iota
	StatusAutoDownloaded
	StatusManualDownloaded
	StatusDeclined
	StatusNoCandidates
	StatusFailed
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case StatusAutoDownloaded:
		return "auto"
	case StatusManualDownloaded:
		return "manual"
	case StatusDeclined:
		return "declined"
	case StatusNoCandidates:
		return "no_candidates"
	case StatusFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// Result records what happened to one path
type Result struct {
	Path        string
	Status      Status
	SkipReason  SkipReason
	Candidate   *SubtitleCandidate // Downloaded candidate, nil unless a download happened
	WrittenPath string             // Subtitle path written, empty unless a download happened
	Err         error
}
