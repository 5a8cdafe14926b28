// Package matcher reconciles the release names used on disk with the version
// labels used by the subtitle listing.
//
// A version label such as "Version WEB-TBS, 0.00 MBs" is normalized into a token
// ("web-tbs") and expanded into an alias set using an ordered table of substring
// rules. A candidate matches a media file when any alias occurs in the lowercased
// file path. New naming quirks are added to the table, not to the matching code.
package matcher

import (
	"sort"
	"strings"

	"github.com/Belphemur/SubGrab/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// AliasRule adds a variant of a token with Old replaced by New.
type AliasRule struct {
	Old string
	New string
}

// DefaultAliasRules covers the release-group spellings that differ between
// scene filenames and listing labels.
var DefaultAliasRules = []AliasRule{
	{Old: "sva", New: "avs"},
	{Old: "avs", New: "sva"},
	{Old: "web-tbs", New: "web.x264-tbs"},
	{Old: "repack.deflate", New: "deflate"},
	{Old: "hdtv.killers", New: "hdtv.x264-killers"},
	{Old: "hdtv.avs_sva", New: "avs"},
	{Old: "hdtv.avs_sva", New: "sva"},
}

const versionPrefix = "version "

// Matcher ranks listing candidates and picks the one matching a media file
type Matcher struct {
	rules []AliasRule
}

// New creates a matcher using rules in order. A nil slice uses DefaultAliasRules.
func New(rules []AliasRule) *Matcher {
	if rules == nil {
		rules = DefaultAliasRules
	}

	normalized := make([]AliasRule, 0, len(rules))
	for _, r := range rules {
		old := lower(r.Old)
		if old == "" {
			continue
		}
		normalized = append(normalized, AliasRule{Old: old, New: lower(r.New)})
	}
	return &Matcher{rules: normalized}
}

// NormalizeVersion turns a raw label into a version token: the text after a
// leading "Version ", cut at the first comma, trimmed, lowercased, spaces as dots.
// Normalizing a token again yields the same token.
func NormalizeVersion(label string) string {
	v := strings.TrimSpace(label)
	if len(v) >= len(versionPrefix) && strings.EqualFold(v[:len(versionPrefix)], versionPrefix) {
		v = v[len(versionPrefix):]
	}
	if idx := strings.Index(v, ","); idx != -1 {
		v = v[:idx]
	}
	v = lower(strings.TrimSpace(v))
	return strings.Join(strings.Fields(v), ".")
}

// Aliases returns the normalized token followed by one variant per applicable
// rule, in table order and without duplicates. Rules are applied to the base
// token only.
func (m *Matcher) Aliases(label string) []string {
	token := NormalizeVersion(label)
	if token == "" {
		return nil
	}

	aliases := []string{token}
	seen := map[string]bool{token: true}
	for _, r := range m.rules {
		if !strings.Contains(token, r.Old) {
			continue
		}
		alias := strings.ReplaceAll(token, r.Old, r.New)
		if alias == "" || seen[alias] {
			continue
		}
		seen[alias] = true
		aliases = append(aliases, alias)
	}
	return aliases
}

// Matches reports whether any alias of the candidate's version occurs in the
// lowercased path.
func (m *Matcher) Matches(candidate models.SubtitleCandidate, path string) bool {
	lowerPath := lower(path)
	for _, alias := range m.Aliases(candidate.Version) {
		if strings.Contains(lowerPath, alias) {
			return true
		}
	}
	return false
}

// Rank returns a copy of candidates ordered by download count, highest first.
// Candidates with equal counts keep their listing order.
func Rank(candidates []models.SubtitleCandidate) []models.SubtitleCandidate {
	ranked := make([]models.SubtitleCandidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Downloads > ranked[j].Downloads
	})
	return ranked
}

// FindMatch returns the first candidate in ranked order that matches path.
func (m *Matcher) FindMatch(ranked []models.SubtitleCandidate, path string) (models.SubtitleCandidate, bool) {
	for _, c := range ranked {
		if m.Matches(c, path) {
			return c, true
		}
	}
	return models.SubtitleCandidate{}, false
}

func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
