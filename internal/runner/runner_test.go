package runner

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/Belphemur/SubGrab/internal/classifier"
	"github.com/Belphemur/SubGrab/internal/config"
	"github.com/Belphemur/SubGrab/internal/models"
)

// fakeProcessor records the files it is asked to process.
type fakeProcessor struct {
	mu      sync.Mutex
	seen    []string
	active  atomic.Int32
	peak    atomic.Int32
	delay   time.Duration
	outcome models.Status
}

func (p *fakeProcessor) Process(ctx context.Context, media models.MediaFile) models.Result {
	n := p.active.Add(1)
	defer p.active.Add(-1)
	for {
		peak := p.peak.Load()
		if n <= peak || p.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(p.delay)

	p.mu.Lock()
	p.seen = append(p.seen, media.Path)
	p.mu.Unlock()
	return models.Result{Path: media.Path, Status: p.outcome}
}

func newTestRunner(t *testing.T, files map[string]string, p Processor, workers int) *Runner {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile %s failed: %v", path, err)
		}
	}
	c := classifier.New(fs, config.DefaultMediaExtensions, ".srt", zerolog.Nop())
	return New(fs, c, p, workers, zerolog.Nop())
}

func TestRunner_SkipsWithoutLookup(t *testing.T) {
	t.Parallel()
	p := &fakeProcessor{outcome: models.StatusAutoDownloaded}
	r := newTestRunner(t, map[string]string{
		"/tv/Show.S01E01.mkv": "",
		"/tv/Show.S01E01.srt": "existing",
		"/tv/Show.S01E02.mkv": "",
		"/tv/notes.txt":       "",
		"/tv/Trailer.mkv":     "",
	}, p, 1)

	results := r.Run(context.Background(), []string{"/tv"})

	if len(results) != 5 {
		t.Fatalf("Expected 5 results, got %d", len(results))
	}
	if len(p.seen) != 1 || p.seen[0] != "/tv/Show.S01E02.mkv" {
		t.Fatalf("Expected only Show.S01E02.mkv to be looked up, got %v", p.seen)
	}

	byPath := make(map[string]models.Result, len(results))
	for _, res := range results {
		byPath[res.Path] = res
	}
	expected := map[string]models.SkipReason{
		"/tv/Show.S01E01.mkv": models.SkipSubtitleExists,
		"/tv/Show.S01E01.srt": models.SkipWrongExtension,
		"/tv/notes.txt":       models.SkipWrongExtension,
		"/tv/Trailer.mkv":     models.SkipUnparsable,
	}
	for path, reason := range expected {
		res := byPath[path]
		if res.Status != models.StatusSkipped || res.SkipReason != reason {
			t.Errorf("%s: expected skipped/%s, got %s/%s", path, reason, res.Status, res.SkipReason)
		}
	}
	if byPath["/tv/Show.S01E02.mkv"].Status != models.StatusAutoDownloaded {
		t.Errorf("Expected the processed file to carry the processor's result")
	}
}

func TestRunner_LexicalOrderAndMissingPaths(t *testing.T) {
	t.Parallel()
	p := &fakeProcessor{outcome: models.StatusDeclined}
	r := newTestRunner(t, map[string]string{
		"/tv/b/Show.S01E02.mkv":    "",
		"/tv/a/Show.S01E01.mkv":    "",
		"/single/Other.S03E04.avi": "",
	}, p, 1)

	results := r.Run(context.Background(), []string{"/missing", "/tv", "/single/Other.S03E04.avi"})

	want := []string{"/tv/a/Show.S01E01.mkv", "/tv/b/Show.S01E02.mkv", "/single/Other.S03E04.avi"}
	if len(results) != len(want) {
		t.Fatalf("Expected %d results, got %d", len(want), len(results))
	}
	for i, path := range want {
		if results[i].Path != path {
			t.Errorf("Result %d: expected %s, got %s", i, path, results[i].Path)
		}
	}
}

func TestRunner_WorkerPoolBound(t *testing.T) {
	t.Parallel()
	files := map[string]string{}
	for _, ep := range []string{"01", "02", "03", "04", "05", "06", "07", "08"} {
		files["/tv/Show.S01E"+ep+".mkv"] = ""
	}
	p := &fakeProcessor{outcome: models.StatusNoCandidates, delay: 10 * time.Millisecond}
	r := newTestRunner(t, files, p, 3)

	results := r.Run(context.Background(), []string{"/tv"})

	if len(results) != 8 || len(p.seen) != 8 {
		t.Fatalf("Expected 8 processed files, got %d results and %d calls", len(results), len(p.seen))
	}
	if peak := p.peak.Load(); peak > 3 {
		t.Errorf("Expected at most 3 concurrent lookups, got %d", peak)
	}
}

func TestRunner_Cancelled(t *testing.T) {
	t.Parallel()
	p := &fakeProcessor{outcome: models.StatusAutoDownloaded}
	r := newTestRunner(t, map[string]string{
		"/tv/Show.S01E01.mkv": "",
		"/tv/Show.S01E02.mkv": "",
	}, p, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := r.Run(ctx, []string{"/tv"})

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	for _, res := range results {
		if res.Status == models.StatusFailed && res.Err == nil {
			t.Errorf("Expected a cancelled file to carry the context error: %+v", res)
		}
	}
}

func TestWriteSummary(t *testing.T) {
	t.Parallel()
	candidate := models.SubtitleCandidate{Version: "Version KILLERS, 0.00 MBs"}
	results := []models.Result{
		{Path: "/tv/Show.S01E01.mkv", Status: models.StatusAutoDownloaded, Candidate: &candidate, WrittenPath: "/tv/Show.S01E01.srt"},
		{Path: "/tv/Show.S01E02.mkv", Status: models.StatusSkipped, SkipReason: models.SkipSubtitleExists},
		{Path: "/tv/cover.jpg", Status: models.StatusSkipped, SkipReason: models.SkipWrongExtension},
	}

	var buf bytes.Buffer
	WriteSummary(&buf, results)
	out := buf.String()

	for _, want := range []string{"Show.S01E01.mkv", "Version KILLERS, 0.00 MBs", "subtitle_exists", "auto 1", "skipped 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected summary to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "cover.jpg") {
		t.Errorf("Expected wrong-extension skips to be left out of the rows, got:\n%s", out)
	}
}
