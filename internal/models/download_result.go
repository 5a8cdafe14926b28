package models

// DownloadResult represents the result of a subtitle download
type DownloadResult struct {
	URL         string // Absolute URL the content was fetched from
	Content     []byte // Raw response body, or the extracted archive entry
	ContentType string // MIME type reported by the server
	Filename    string // Attachment name sent by the server, or the extracted archive entry
}
