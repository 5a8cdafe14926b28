// Package client talks to the subtitle site: it fetches episode listings and
// downloads the chosen subtitle, one cookie session per media file.
package client

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/Belphemur/SubGrab/internal/cache"
	"github.com/Belphemur/SubGrab/internal/config"
	"github.com/Belphemur/SubGrab/internal/parser"
	"github.com/Belphemur/SubGrab/internal/query"
	"github.com/failsafe-go/failsafe-go/failsafehttp"
	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"
)

const defaultTimeout = 30 * time.Second

// Client holds what every lookup shares: the transport stack, the listing
// cache and the site settings. Cookies live in the Session it opens.
type Client struct {
	baseURL    *url.URL
	languageID int
	timeout    time.Duration
	transport  http.RoundTripper
	queries    *query.Builder
	listings   cache.Cache
	parser     parser.CandidateParser
	logger     zerolog.Logger
}

// NewClient builds the transport stack from cfg: optional proxy, then the
// site headers and response decoding, then retry when retry.max_attempts > 1.
// A nil listingCache disables caching.
func NewClient(cfg *config.Config, queries *query.Builder, listingCache cache.Cache, logger zerolog.Logger) (*Client, error) {
	logger = logger.With().Str("component", "client").Logger()

	baseURL, err := url.Parse(strings.TrimRight(cfg.SubtitleDomain, "/"))
	if err != nil || baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("invalid subtitle domain %q", cfg.SubtitleDomain)
	}

	timeout := parseDuration(logger, "client_timeout", cfg.ClientTimeout, defaultTimeout)

	// Clone DefaultTransport to keep its pooling, timeouts and HTTP/2 settings
	base := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.ProxyConnectionString != "" {
		proxyURL, err := url.Parse(cfg.ProxyConnectionString)
		if err != nil {
			logger.Warn().Err(err).Str("proxy", cfg.ProxyConnectionString).Msg("Invalid proxy URL, continuing without proxy")
		} else {
			base.Proxy = http.ProxyURL(proxyURL)
		}
	}

	var transport http.RoundTripper = newSiteTransport(base, cfg.UserAgent)
	if cfg.Retry.MaxAttempts > 1 {
		delay := parseDuration(logger, "retry.delay", cfg.Retry.Delay, time.Second)
		maxDelay := parseDuration(logger, "retry.max_delay", cfg.Retry.MaxDelay, 10*time.Second)
		if maxDelay <= delay {
			maxDelay = delay * 2
		}
		policy := failsafehttp.NewRetryPolicyBuilder().
			WithMaxAttempts(cfg.Retry.MaxAttempts).
			WithBackoff(delay, maxDelay).
			ReturnLastFailure().
			Build()
		transport = failsafehttp.NewRoundTripper(transport, policy)
		logger.Debug().Int("maxAttempts", cfg.Retry.MaxAttempts).Dur("delay", delay).Dur("maxDelay", maxDelay).Msg("Retry enabled")
	}

	if queries == nil {
		queries = query.NewBuilder(nil)
	}
	languageID := cfg.ListingLanguageID
	if languageID <= 0 {
		languageID = 1
	}

	return &Client{
		baseURL:    baseURL,
		languageID: languageID,
		timeout:    timeout,
		transport:  transport,
		queries:    queries,
		listings:   listingCache,
		parser:     parser.NewListingParser(logger),
		logger:     logger,
	}, nil
}

// NewSession opens a session with an empty cookie jar. The site hands out a
// session cookie with the listing that the download request must send back.
func (c *Client) NewSession() (*Session, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &Session{
		client: c,
		http: &http.Client{
			Transport: c.transport,
			Jar:       jar,
			Timeout:   c.timeout,
		},
	}, nil
}

// resolve turns a site-relative link into an absolute URL.
func (c *Client) resolve(link string) (string, error) {
	ref, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("invalid link %q: %w", link, err)
	}
	return c.baseURL.ResolveReference(ref).String(), nil
}

func parseDuration(logger zerolog.Logger, key, value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		logger.Warn().Err(err).Str("key", key).Str("value", value).Dur("default", fallback).Msg("Invalid duration, using default")
		return fallback
	}
	return d
}
