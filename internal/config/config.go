package config

import (
	"errors"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultUserAgent is the default User-Agent string sent with all HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_11_6) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/61.0.3163.100 Safari/537.36"

// DefaultSubtitleDomain is the subtitle site queried when none is configured.
const DefaultSubtitleDomain = "http://www.addic7ed.com"

// DefaultMediaExtensions lists the video extensions eligible for a lookup.
var DefaultMediaExtensions = []string{
	".avi", ".mp4", ".mkv", ".mpg", ".mpeg", ".mov", ".rm", ".vob", ".wmv", ".flv", ".3gp", ".3g2",
}

// Rule is a (from, to) string pair used by both the query overrides and the version alias table.
type Rule struct {
	From string `mapstructure:"from"`
	To   string `mapstructure:"to"`
}

type Config struct {
	SubtitleDomain        string   `mapstructure:"subtitle_domain"`
	ProxyConnectionString string   `mapstructure:"proxy_connection_string"`
	ClientTimeout         string   `mapstructure:"client_timeout"` // Go duration string like "30s", "1m", etc.
	UserAgent             string   `mapstructure:"user_agent"`
	ListingLanguageID     int      `mapstructure:"listing_language_id"`
	Languages             []string `mapstructure:"languages"` // Empty keeps every language
	MediaExtensions       []string `mapstructure:"media_extensions"`
	SubtitleExtension     string   `mapstructure:"subtitle_extension"`
	Workers               int      `mapstructure:"workers"`
	NonInteractive        bool     `mapstructure:"non_interactive"`
	LogLevel              string   `mapstructure:"log_level"`
	LogFile               string   `mapstructure:"log_file"`
	LogConsole            bool     `mapstructure:"log_console"`
	Retry                 struct {
		MaxAttempts int    `mapstructure:"max_attempts"` // 1 disables retries
		Delay       string `mapstructure:"delay"`
		MaxDelay    string `mapstructure:"max_delay"`
	} `mapstructure:"retry"`
	Cache struct {
		Provider string `mapstructure:"provider"` // "memory", "redis" or "none"
		Size     int    `mapstructure:"size"`
		TTL      string `mapstructure:"ttl"`
	} `mapstructure:"cache"`
	Redis struct {
		Address  string `mapstructure:"address"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Metrics struct {
		Textfile string `mapstructure:"textfile"`
	} `mapstructure:"metrics"`
	Sentry struct {
		DSN         string `mapstructure:"dsn"`
		Environment string `mapstructure:"environment"`
	} `mapstructure:"sentry"`
	QueryOverrides []Rule `mapstructure:"query_overrides"` // Nil keeps the built-in table
	AliasRules     []Rule `mapstructure:"alias_rules"`     // Nil keeps the built-in table
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"workers":         "workers",
	"non-interactive": "non_interactive",
	"log-level":       "log_level",
	"log-file":        "log_file",
	"log-console":     "log_console",
}

// Load reads the configuration from configFile, or from config.yaml in . or ./config
// when configFile is empty. Environment variables prefixed with APP_ and any flags
// present in flags override file values.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variable support
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Add specific environment variable for log level
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	setDefaults(v)

	if flags != nil {
		for name, key := range flagKeys {
			if flag := flags.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.Workers < 1 {
		config.Workers = 1
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("subtitle_domain", DefaultSubtitleDomain)
	v.SetDefault("client_timeout", "30s")
	v.SetDefault("listing_language_id", 1)
	v.SetDefault("languages", []string{"English"})
	v.SetDefault("media_extensions", DefaultMediaExtensions)
	v.SetDefault("subtitle_extension", ".srt")
	v.SetDefault("workers", 1)
	v.SetDefault("non_interactive", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_console", false)
	v.SetDefault("retry.max_attempts", 1)
	v.SetDefault("retry.delay", "1s")
	v.SetDefault("retry.max_delay", "10s")
	v.SetDefault("cache.provider", "memory")
	v.SetDefault("cache.size", 64)
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("redis.address", "localhost:6379")
}
