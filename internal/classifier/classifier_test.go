package classifier

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Belphemur/SubGrab/internal/config"
	"github.com/Belphemur/SubGrab/internal/models"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

func newTestClassifier(fs afero.Fs) *Classifier {
	return New(fs, config.DefaultMediaExtensions, ".srt", zerolog.Nop())
}

func TestParseEpisode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		input       string
		wantShow    string
		wantSeason  string
		wantEpisode string
		wantOK      bool
	}{
		{"dotted release", "Show.Name.S02E03.720p.WEB-TBS", "show.name", "02", "03", true},
		{"lowercase marker", "show.name.s10e21", "show.name", "10", "21", true},
		{"trailing separators stripped", "Show Name - S01E01 - Pilot", "show name", "01", "01", true},
		{"underscores", "Show_Name_S05E09", "show_name", "05", "09", true},
		{"last marker wins", "Show.S01E01.S01E02.mkv", "show.s01e01", "01", "02", true},
		{"no range check", "Show.S99E00", "show", "99", "00", true},
		{"no marker", "Show.Name.1x03.HDTV", "", "", "", false},
		{"single digit season", "Show.S1E03", "", "", "", false},
		{"empty prefix", "S01E01.HDTV", "", "", "", false},
		{"separator-only prefix", "._S01E01", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			show, season, episode, ok := ParseEpisode(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseEpisode(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if show != tt.wantShow || season != tt.wantSeason || episode != tt.wantEpisode {
				t.Errorf("ParseEpisode(%q) = (%q, %q, %q), want (%q, %q, %q)",
					tt.input, show, season, episode, tt.wantShow, tt.wantSeason, tt.wantEpisode)
			}
		})
	}
}

func TestClassifier_Classify(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	dir := filepath.Join(string(filepath.Separator), "tv")
	files := []string{
		"Show.Name.S02E03.720p.WEB-TBS.mkv",
		"Other.Show.S01E01.HDTV.MKV",
		"Subbed.Show.S01E02.mkv",
		"Subbed.Show.S01E02.srt",
		"Random.Movie.2019.mp4",
		"notes.txt",
	}
	for _, f := range files {
		if err := afero.WriteFile(fs, filepath.Join(dir, f), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", f, err)
		}
	}
	c := newTestClassifier(fs)

	t.Run("media file", func(t *testing.T) {
		path := filepath.Join(dir, "Show.Name.S02E03.720p.WEB-TBS.mkv")
		got := c.Classify(path)
		if got.Skipped() {
			t.Fatalf("Expected media file, got skip %s", got.Skip)
		}
		want := models.MediaFile{
			Path:      path,
			Extension: ".mkv",
			ShowName:  "show.name",
			Season:    "02",
			Episode:   "03",
		}
		if got.Media != want {
			t.Errorf("Classify() = %+v, want %+v", got.Media, want)
		}
		if sub := got.Media.SubtitlePath(".srt"); sub != filepath.Join(dir, "Show.Name.S02E03.720p.WEB-TBS.srt") {
			t.Errorf("SubtitlePath() = %q", sub)
		}
	})

	t.Run("uppercase extension accepted", func(t *testing.T) {
		got := c.Classify(filepath.Join(dir, "Other.Show.S01E01.HDTV.MKV"))
		if got.Skipped() {
			t.Fatalf("Expected uppercase extension to be accepted, got %s", got.Skip)
		}
		if got.Media.Extension != ".MKV" {
			t.Errorf("Expected extension preserved as .MKV, got %q", got.Media.Extension)
		}
	})

	tests := []struct {
		name string
		file string
		want models.SkipReason
	}{
		{"existing subtitle", "Subbed.Show.S01E02.mkv", models.SkipSubtitleExists},
		{"unparsable", "Random.Movie.2019.mp4", models.SkipUnparsable},
		{"wrong extension", "notes.txt", models.SkipWrongExtension},
		{"subtitle itself", "Subbed.Show.S01E02.srt", models.SkipWrongExtension},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(filepath.Join(dir, tt.file))
			if got.Skip != tt.want {
				t.Errorf("Classify(%s) skip = %s, want %s", tt.file, got.Skip, tt.want)
			}
		})
	}
}

// deniedSubtitleFs refuses to stat subtitle files.
type deniedSubtitleFs struct {
	afero.Fs
}

func (d deniedSubtitleFs) Stat(name string) (os.FileInfo, error) {
	if strings.HasSuffix(name, ".srt") {
		return nil, &os.PathError{Op: "stat", Path: name, Err: os.ErrPermission}
	}
	return d.Fs.Stat(name)
}

func TestClassifier_SubtitleCheckFailureSkips(t *testing.T) {
	t.Parallel()
	mem := afero.NewMemMapFs()
	path := filepath.Join(string(filepath.Separator), "tv", "Show.Name.S02E03.mkv")
	if err := afero.WriteFile(mem, path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}

	got := newTestClassifier(deniedSubtitleFs{Fs: mem}).Classify(path)
	if got.Skip != models.SkipUnreadable {
		t.Errorf("Expected skip %s when the subtitle cannot be checked, got %s", models.SkipUnreadable, got.Skip)
	}
}

func TestNew_NormalizesExtensions(t *testing.T) {
	t.Parallel()
	c := New(afero.NewMemMapFs(), []string{"MKV", " .Avi ", ""}, ".srt", zerolog.Nop())
	if !c.extensions[".mkv"] || !c.extensions[".avi"] {
		t.Errorf("Expected normalized extensions, got %v", c.extensions)
	}
	if len(c.extensions) != 2 {
		t.Errorf("Expected empty extension to be dropped, got %v", c.extensions)
	}
}
