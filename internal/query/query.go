// Package query turns the show name extracted from a filename into the query
// fragment and listing URL the subtitle site expects.
package query

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Belphemur/SubGrab/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Separators are the characters release names use between words.
const Separators = "._ "

// SpaceToken replaces every run of separators in a query.
const SpaceToken = "%20"

// Override rewrites a normalized query to the name the site actually lists.
// From and To are written in human form ("the office us") and normalized on use.
type Override struct {
	From string
	To   string
}

// DefaultOverrides holds show names whose release spelling differs from the listing.
var DefaultOverrides = []Override{
	{From: "the office us", To: "the office (us)"},
	{From: "shameless us", To: "shameless (us)"},
}

// Builder normalizes show names into listing queries
type Builder struct {
	overrides map[string]string
}

// NewBuilder creates a builder with the given override table. A nil table uses DefaultOverrides.
func NewBuilder(overrides []Override) *Builder {
	if overrides == nil {
		overrides = DefaultOverrides
	}

	table := make(map[string]string, len(overrides))
	for _, o := range overrides {
		from := normalize(o.From)
		if from == "" {
			continue
		}
		table[from] = normalize(o.To)
	}

	return &Builder{overrides: table}
}

// Build returns the URL-safe query for a show name: separators trimmed, lowercased,
// internal separator runs replaced with %20, then any override applied.
func (b *Builder) Build(showName string) string {
	q := normalize(showName)
	if replacement, ok := b.overrides[q]; ok {
		return replacement
	}
	return q
}

// ListingURL builds <base>/serie/<query>/<season>/<episode>/<languageID>.
func (b *Builder) ListingURL(baseURL string, media models.MediaFile, languageID int) string {
	return fmt.Sprintf("%s/serie/%s/%s/%s/%d",
		strings.TrimRight(baseURL, "/"),
		b.Build(media.ShowName),
		media.Season,
		media.Episode,
		languageID,
	)
}

func normalize(name string) string {
	name = strings.Trim(name, Separators)
	name = cases.Lower(language.Und).String(name)

	words := strings.FieldsFunc(name, func(r rune) bool {
		return strings.ContainsRune(Separators, r)
	})
	for i, w := range words {
		words[i] = url.PathEscape(w)
	}
	return strings.Join(words, SpaceToken)
}
