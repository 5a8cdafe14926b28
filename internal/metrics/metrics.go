// Package metrics holds the run counters. The tool exits after one run, so the
// registry is exported to a node-exporter textfile rather than scraped.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Listing sources for ListingRequestsTotal
const (
	SourceNetwork = "network"
	SourceCache   = "cache"
)

var (
	// SubtitleDownloadsTotal counts download attempts by mode ("auto" or "manual")
	// and status ("success" or "error").
	SubtitleDownloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subtitle_downloads_total",
			Help: "Total number of subtitle downloads.",
		},
		[]string{"mode", "status"},
	)

	FilesSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "files_skipped_total",
			Help: "Total number of files skipped before any lookup.",
		},
		[]string{"reason"},
	)

	ListingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_requests_total",
			Help: "Total number of listing pages served, by source.",
		},
		[]string{"source"},
	)

	FileOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "file_outcomes_total",
			Help: "Total number of processed files by final status.",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(
		SubtitleDownloadsTotal,
		FilesSkippedTotal,
		ListingRequestsTotal,
		FileOutcomesTotal,
	)
}
