package testutil

import (
	"fmt"
	"strings"
)

// ListingRowOptions contains options for generating one subtitle entry of a listing page
type ListingRowOptions struct {
	Version    string // Release name without the "Version " prefix, e.g. "KILLERS"
	SizeMB     string // Size shown after the version, defaults to "0.00"
	Works      string // "Works with ..." note
	Language   string // Defaults to "English"
	Status     string // Defaults to "Completed"
	Downloads  int
	Edits      int
	Sequences  int
	SubtitleID int // Used to build the download links
	// OriginalOnly renders only the "original" download button instead of both
	// "original" and "most updated".
	OriginalOnly bool
	// OmitDownload drops every download button, mimicking a layout change.
	OmitDownload bool
	// DownloadsText overrides the statistics line, e.g. to drop the count.
	DownloadsText string
}

// DownloadLink returns the link of the last download button rendered for the row.
func (o ListingRowOptions) DownloadLink(index int) string {
	id := o.SubtitleID
	if id == 0 {
		id = 130000 + index
	}
	if o.OriginalOnly {
		return fmt.Sprintf("/original/%d/0", id)
	}
	return fmt.Sprintf("/updated/1/%d/0", id)
}

// GenerateListingHTML generates an episode listing page following the structure
// of the Addic7ed "serie" pages: one table per subtitle version.
func GenerateListingHTML(showTitle string, rows []ListingRowOptions) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `<!DOCTYPE html>
<html>
<head>
<meta http-equiv="Content-Type" content="text/html; charset=UTF-8">
<title>%s - Addic7ed.com</title>
</head>
<body>
<div id="container95m">
<span class="titulo">%s <small>Subtitle</small></span>
`, showTitle, showTitle)

	for i, row := range rows {
		if row.Language == "" {
			row.Language = "English"
		}
		if row.Status == "" {
			row.Status = "Completed"
		}
		if row.SizeMB == "" {
			row.SizeMB = "0.00"
		}
		if row.Works == "" {
			row.Works = "Works with " + row.Version
		}
		id := row.SubtitleID
		if id == 0 {
			id = 130000 + i
		}

		buttons := ""
		if !row.OmitDownload {
			buttons = fmt.Sprintf(`<img src="/images/download.png" width="24" height="24" /> <a class="buttonDownload" href="/original/%d/0"><strong>original</strong></a>`, id)
			if !row.OriginalOnly {
				buttons += fmt.Sprintf(`
					<a class="buttonDownload" href="/updated/1/%d/0"><strong>most updated</strong></a>`, id)
			}
		}

		stats := row.DownloadsText
		if stats == "" {
			stats = fmt.Sprintf("%d times edited · %d Downloads · %d sequences", row.Edits, row.Downloads, row.Sequences)
		}

		fmt.Fprintf(&sb, `
<div id="container95m">
<table class="tabel95">
<tr><td>
	<table width="100%%" border="0" align="center" class="tabel95">
	<tr>
		<td colspan="3" align="center" class="NewsTitle"><img src="/images/folder_page.png" width="16" height="16" />Version %s, %s MBs&nbsp;</td>
		<td align="right"><a href="/subtitles/edit/%d">edit</a></td>
	</tr>
	<tr>
		<td class="newsDate" colspan="3">%s<img src="/images/invisible.gif" /></td>
	</tr>
	<tr>
		<td width="10%%" rowspan="2" valign="top"><a href="/user/1"><img src="/images/notes.png" /></a></td>
		<td width="1%%" rowspan="2" valign="top"><img src="/images/flags/uk.gif" /></td>
		<td width="21%%" class="language">%s<a href="javascript:saveFavorite(%d,1,0)"></a></td>
		<td width="19%%"><b>%s</b></td>
		<td colspan="3">%s</td>
	</tr>
	<tr>
		<td colspan="2" class="newsDate">%s</td>
	</tr>
	</table>
</td></tr>
</table>
</div>
`,
			row.Version, row.SizeMB, id,
			row.Works,
			row.Language, id,
			row.Status,
			buttons,
			stats,
		)
	}

	sb.WriteString(`
</div>
</body>
</html>`)
	return sb.String()
}

// SampleSRT is a small, valid SubRip document used as download content in tests.
const SampleSRT = "1\n00:00:01,000 --> 00:00:02,500\nPreviously on...\n\n2\n00:00:03,000 --> 00:00:04,000\nHello there.\n"
