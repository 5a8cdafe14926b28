package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Belphemur/SubGrab/internal/cache"
	"github.com/Belphemur/SubGrab/internal/classifier"
	"github.com/Belphemur/SubGrab/internal/client"
	"github.com/Belphemur/SubGrab/internal/config"
	"github.com/Belphemur/SubGrab/internal/matcher"
	"github.com/Belphemur/SubGrab/internal/metrics"
	"github.com/Belphemur/SubGrab/internal/picker"
	"github.com/Belphemur/SubGrab/internal/query"
	"github.com/Belphemur/SubGrab/internal/reporting"
	"github.com/Belphemur/SubGrab/internal/runner"
	"github.com/Belphemur/SubGrab/internal/services"
)

// version is set with -ldflags "-X main.version=..."
var version = "dev"

const sentryFlushTimeout = 2 * time.Second

func main() {
	if err := newRootCommand(os.Stdin).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(stdin io.Reader) *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "subgrab [paths...]",
		Short: "Download subtitles for TV episodes",
		Long: `subgrab looks up every video file under the given paths on the subtitle site
and writes <name>.srt next to it. A release whose version matches the file name
is downloaded automatically; otherwise the available subtitles are listed to
pick from. Files that already have a subtitle are never looked up.`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, configFile, stdin, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "config file (default: config.yaml in . or ./config)")
	flags.Int("workers", 1, "number of files looked up at once")
	flags.Bool("non-interactive", false, "never show the picker; unmatched files are declined")
	flags.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	flags.String("log-file", "", "log file (default: next to the executable)")
	flags.Bool("log-console", false, "also write logs to stderr")
	return cmd
}

// run returns an error only when configuration or logging cannot be set up;
// per-file failures end up in the summary.
func run(cmd *cobra.Command, configFile string, stdin io.Reader, args []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logCloser.Close()

	logger.Info().
		Str("version", version).
		Str("subtitleDomain", cfg.SubtitleDomain).
		Strs("languages", cfg.Languages).
		Int("workers", cfg.Workers).
		Str("cache", cfg.Cache.Provider).
		Strs("paths", args).
		Msg("SubGrab started")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reporter, err := reporting.New(cfg, version, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Sentry disabled")
	}
	defer reporter.Flush(sentryFlushTimeout)

	listingCache := newListingCache(cfg, logger)
	defer listingCache.Close()

	httpClient, err := client.NewClient(cfg, query.NewBuilder(queryOverrides(cfg.QueryOverrides)), listingCache, logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	fs := afero.NewOsFs()
	fetcher := services.NewFetcher(cfg, httpClient, matcher.New(aliasRules(cfg.AliasRules)),
		choosePicker(cfg, stdin, cmd.OutOrStdout(), logger), fs, reporter, logger)
	files := classifier.New(fs, cfg.MediaExtensions, cfg.SubtitleExtension, logger)

	results := runner.New(fs, files, fetcher, cfg.Workers, logger).Run(ctx, args)
	runner.WriteSummary(cmd.OutOrStdout(), results)

	if err := metrics.WriteTextfile(cfg.Metrics.Textfile, nil); err != nil {
		logger.Warn().Err(err).Msg("Failed to export metrics")
	}

	logger.Info().Int("files", len(results)).Msg("SubGrab finished")
	return nil
}

// newListingCache builds the configured cache, falling back to no caching
// when the provider cannot be created.
func newListingCache(cfg *config.Config, logger zerolog.Logger) cache.Cache {
	ttl, err := time.ParseDuration(cfg.Cache.TTL)
	if err != nil || ttl <= 0 {
		ttl = 10 * time.Minute
	}
	size := cfg.Cache.Size
	if size <= 0 {
		size = 64
	}

	c, err := cache.New(cfg.Cache.Provider, cache.ProviderConfig{
		Size:          size,
		TTL:           ttl,
		Logger:        cache.NewZerologLogger(logger),
		RedisAddress:  cfg.Redis.Address,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
		Group:         "listings",
	})
	if err != nil {
		logger.Warn().Err(err).Str("provider", cfg.Cache.Provider).Msg("Listing cache unavailable, continuing without cache")
		c, _ = cache.New("none", cache.ProviderConfig{})
	}
	return c
}

// choosePicker shows the terminal picker only when both ends are a terminal.
func choosePicker(cfg *config.Config, in io.Reader, out io.Writer, logger zerolog.Logger) picker.Picker {
	if cfg.NonInteractive {
		return picker.Decline{}
	}
	if !isTerminal(in) || !isTerminal(out) {
		logger.Info().Msg("No terminal attached, unmatched files will be declined")
		return picker.Decline{}
	}
	return picker.NewSerialized(picker.NewTerminal(in, out))
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func queryOverrides(rules []config.Rule) []query.Override {
	if rules == nil {
		return nil
	}
	overrides := make([]query.Override, 0, len(rules))
	for _, r := range rules {
		overrides = append(overrides, query.Override{From: r.From, To: r.To})
	}
	return overrides
}

func aliasRules(rules []config.Rule) []matcher.AliasRule {
	if rules == nil {
		return nil
	}
	aliases := make([]matcher.AliasRule, 0, len(rules))
	for _, r := range rules {
		aliases = append(aliases, matcher.AliasRule{Old: r.From, New: r.To})
	}
	return aliases
}
