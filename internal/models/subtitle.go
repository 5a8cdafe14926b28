package models

// SubtitleCandidate is one row of a subtitle listing
type SubtitleCandidate struct {
	Version   string  `json:"version"`   // Raw version label, e.g. "Version KILLERS, 0.00 MBs"
	Downloads int     `json:"downloads"` // Download count shown on the listing
	Language  string  `json:"language"`  // Language as written on the listing, e.g. "English"
	Link      string  `json:"link"`      // Download link relative to the site root
	Quality   Quality `json:"quality"`   // Video quality detected from the version label
}

// Listing is the parsed result of one listing page
type Listing struct {
	URL        string              `json:"url"` // Listing URL, sent as Referer on downloads
	Candidates []SubtitleCandidate `json:"candidates"`
}
