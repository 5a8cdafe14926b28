// Package reporting forwards per-file failures to Sentry when a DSN is configured.
package reporting

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"

	"github.com/Belphemur/SubGrab/internal/config"
)

// Reporter captures errors. A nil or disabled Reporter drops them, so callers
// never need to check whether Sentry is configured.
type Reporter struct {
	hub    *sentry.Hub
	logger zerolog.Logger
}

// New initialises Sentry from cfg.Sentry. Without a DSN it returns a disabled
// Reporter and no error.
func New(cfg *config.Config, release string, logger zerolog.Logger) (*Reporter, error) {
	logger = logger.With().Str("component", "reporting").Logger()
	if cfg.Sentry.DSN == "" {
		return &Reporter{logger: logger}, nil
	}

	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		Release:     release,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialise sentry: %w", err)
	}

	logger.Info().Str("environment", cfg.Sentry.Environment).Msg("Sentry reporting enabled")
	return &Reporter{
		hub:    sentry.NewHub(client, sentry.NewScope()),
		logger: logger,
	}, nil
}

// Enabled reports whether errors are sent anywhere.
func (r *Reporter) Enabled() bool {
	return r != nil && r.hub != nil
}

// Capture sends err with the given tags.
func (r *Reporter) Capture(err error, tags map[string]string) {
	if !r.Enabled() || err == nil {
		return
	}
	r.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		if id := r.hub.CaptureException(err); id != nil {
			r.logger.Debug().Str("eventID", string(*id)).Msg("Reported error to Sentry")
		}
	})
}

// Flush waits up to timeout for queued events to be sent.
func (r *Reporter) Flush(timeout time.Duration) {
	if !r.Enabled() {
		return
	}
	if !r.hub.Flush(timeout) {
		r.logger.Warn().Dur("timeout", timeout).Msg("Timed out flushing Sentry events")
	}
}
