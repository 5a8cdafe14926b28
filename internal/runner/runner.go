// Package runner walks the given paths, classifies every file and hands the
// media files to a Processor through a bounded worker pool.
package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/Belphemur/SubGrab/internal/classifier"
	"github.com/Belphemur/SubGrab/internal/metrics"
	"github.com/Belphemur/SubGrab/internal/models"
)

// Processor fetches the subtitle of one media file.
type Processor interface {
	Process(ctx context.Context, media models.MediaFile) models.Result
}

type Runner struct {
	fs         afero.Fs
	classifier *classifier.Classifier
	processor  Processor
	workers    int
	logger     zerolog.Logger
}

// New creates a runner processing up to workers files at once.
func New(fs afero.Fs, c *classifier.Classifier, p Processor, workers int, logger zerolog.Logger) *Runner {
	return &Runner{
		fs:         fs,
		classifier: c,
		processor:  p,
		workers:    max(workers, 1),
		logger:     logger.With().Str("component", "runner").Logger(),
	}
}

type job struct {
	index int
	media models.MediaFile
}

// Run processes every file under paths and returns one Result per file, in
// discovery order. Directories are walked recursively in lexical order.
// Missing paths are logged and left out.
func (r *Runner) Run(ctx context.Context, paths []string) []models.Result {
	files := r.discover(paths)
	results := make([]models.Result, len(files))
	jobs := make([]job, 0, len(files))

	for i, path := range files {
		c := r.classifier.Classify(path)
		if c.Skipped() {
			metrics.FilesSkippedTotal.WithLabelValues(c.Skip.String()).Inc()
			results[i] = models.Result{Path: c.Path, Status: models.StatusSkipped, SkipReason: c.Skip}
			continue
		}
		jobs = append(jobs, job{index: i, media: c.Media})
	}

	r.logger.Info().
		Int("files", len(files)).
		Int("lookups", len(jobs)).
		Int("workers", r.workers).
		Msg("Starting subtitle lookups")

	r.process(ctx, jobs, results)

	for _, res := range results {
		metrics.FileOutcomesTotal.WithLabelValues(res.Status.String()).Inc()
	}
	return results
}

func (r *Runner) process(ctx context.Context, jobs []job, results []models.Result) {
	queue := make(chan job)
	var wg sync.WaitGroup
	for range min(r.workers, max(len(jobs), 1)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range queue {
				results[j.index] = r.processor.Process(ctx, j.media)
			}
		}()
	}

	for i, j := range jobs {
		select {
		case queue <- j:
		case <-ctx.Done():
			for _, rest := range jobs[i:] {
				results[rest.index] = models.Result{Path: rest.media.Path, Status: models.StatusFailed, Err: ctx.Err()}
			}
			r.logger.Warn().Int("abandoned", len(jobs)-i).Msg("Run cancelled")
			close(queue)
			wg.Wait()
			return
		}
	}
	close(queue)
	wg.Wait()
}

// discover expands paths into the list of regular files to classify.
func (r *Runner) discover(paths []string) []string {
	var files []string
	for _, path := range paths {
		info, err := r.fs.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				r.logger.Warn().Str("path", path).Msg("Path does not exist, skipping")
			} else {
				r.logger.Warn().Err(err).Str("path", path).Msg("Cannot access path, skipping")
			}
			continue
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		err = afero.Walk(r.fs, path, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				r.logger.Warn().Err(err).Str("path", p).Msg("Cannot read path, skipping")
				if fi != nil && fi.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if fi.Mode().IsRegular() {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			r.logger.Warn().Err(err).Str("path", path).Msg("Directory walk stopped early")
		}
	}
	return files
}
