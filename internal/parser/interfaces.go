package parser

import (
	"io"

	"github.com/Belphemur/SubGrab/internal/models"
)

// CandidateParser reads the subtitle candidates of an episode listing page.
type CandidateParser interface {
	ParseHtmlWithContentType(body io.Reader, contentType string) ([]models.SubtitleCandidate, error)
}

var _ CandidateParser = (*ListingParser)(nil)
