package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/net/publicsuffix"
)

// Config holds all application configuration
type Config struct {
	// Admission rules for candidate URLs
	Admission AdmissionConfig `mapstructure:"admission"`

	// Trap detection
	Trap TrapConfig `mapstructure:"trap"`

	// Content quality filtering
	Quality QualityConfig `mapstructure:"quality"`

	// Near-duplicate detection
	Dedup DedupConfig `mapstructure:"dedup"`

	// HTML content handling
	Content ContentConfig `mapstructure:"content"`

	// Statistics aggregation
	Stats StatsConfig `mapstructure:"stats"`

	// Storage configuration
	Storage StorageConfig `mapstructure:"storage"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// AdmissionConfig decides which URLs may enter the corpus
type AdmissionConfig struct {
	AllowedHosts       []string `mapstructure:"allowed_hosts"`
	PortalHost         string   `mapstructure:"portal_host"`
	PortalPathPrefix   string   `mapstructure:"portal_path_prefix"`
	RejectedExtensions []string `mapstructure:"rejected_extensions"`
}

// TrapConfig holds the path-pattern repetition threshold
type TrapConfig struct {
	Threshold int `mapstructure:"threshold"`
}

// QualityConfig selects and tunes the content quality strategy
type QualityConfig struct {
	Strategy       string   `mapstructure:"strategy"` // "word_count" or "text_density"
	MinWords       int      `mapstructure:"min_words"`
	MinTextRatio   float64  `mapstructure:"min_text_ratio"`
	MinKeywordHits int      `mapstructure:"min_keyword_hits"`
	Keywords       []string `mapstructure:"keywords"`
}

// DedupConfig holds the fingerprint distance threshold
type DedupConfig struct {
	DistanceThreshold int `mapstructure:"distance_threshold"`
}

// ContentConfig controls how page text is pulled out of markup
type ContentConfig struct {
	Extractor     string `mapstructure:"extractor"` // "visible" or "main"
	DetectCharset bool   `mapstructure:"detect_charset"`
}

// StatsConfig holds statistics aggregation settings
type StatsConfig struct {
	SubdomainSuffix    string   `mapstructure:"subdomain_suffix"`
	CheckpointInterval int      `mapstructure:"checkpoint_interval"`
	TopWords           int      `mapstructure:"top_words"`
	Stopwords          []string `mapstructure:"stopwords"`
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	Type            string        `mapstructure:"type"` // "file" or "sqlite"
	Path            string        `mapstructure:"path"`
	PersistInterval time.Duration `mapstructure:"persist_interval"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // "json" or "console"
	OutputPath string `mapstructure:"output_path"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("crawlgate")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.crawlgate")
	}

	setDefaults(v)
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is not an error, we'll use defaults and env
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

// Default returns the configuration built from defaults only
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var config Config
	// Defaults are static values, decoding them cannot fail.
	_ = v.Unmarshal(&config)
	return &config
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Admission defaults
	v.SetDefault("admission.allowed_hosts", DefaultAllowedHosts)
	v.SetDefault("admission.portal_host", "today.uci.edu")
	v.SetDefault("admission.portal_path_prefix", "/department/information_computer_sciences")
	v.SetDefault("admission.rejected_extensions", DefaultRejectedExtensions)

	// Trap defaults
	v.SetDefault("trap.threshold", 10)

	// Quality defaults
	v.SetDefault("quality.strategy", "word_count")
	v.SetDefault("quality.min_words", 100)
	v.SetDefault("quality.min_text_ratio", 0.2)
	v.SetDefault("quality.min_keyword_hits", 5)
	v.SetDefault("quality.keywords", DefaultKeywords)

	// Dedup defaults
	v.SetDefault("dedup.distance_threshold", 5)

	// Content defaults
	v.SetDefault("content.extractor", "visible")
	v.SetDefault("content.detect_charset", true)

	// Stats defaults
	v.SetDefault("stats.subdomain_suffix", "uci.edu")
	v.SetDefault("stats.checkpoint_interval", 100)
	v.SetDefault("stats.top_words", 50)
	v.SetDefault("stats.stopwords", DefaultStopwords)

	// Storage defaults
	v.SetDefault("storage.type", "file")
	v.SetDefault("storage.path", "./data")
	v.SetDefault("storage.persist_interval", "0s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_path", "stderr")
}

// bindEnvVars binds environment variables
func bindEnvVars(v *viper.Viper) {
	v.SetEnvPrefix("CRAWLGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.Admission.AllowedHosts) == 0 && c.Admission.PortalHost == "" {
		return ErrNoAllowedHosts
	}
	if c.Trap.Threshold <= 0 {
		return fmt.Errorf("trap.threshold=%d: %w", c.Trap.Threshold, ErrInvalidThreshold)
	}
	if c.Dedup.DistanceThreshold < 0 || c.Dedup.DistanceThreshold > 64 {
		return fmt.Errorf("dedup.distance_threshold=%d: %w", c.Dedup.DistanceThreshold, ErrInvalidThreshold)
	}
	if c.Stats.CheckpointInterval <= 0 {
		return fmt.Errorf("stats.checkpoint_interval=%d: %w", c.Stats.CheckpointInterval, ErrInvalidThreshold)
	}
	if c.Stats.TopWords <= 0 {
		return fmt.Errorf("stats.top_words=%d: %w", c.Stats.TopWords, ErrInvalidThreshold)
	}
	if c.Storage.PersistInterval < 0 {
		return fmt.Errorf("storage.persist_interval=%s: %w", c.Storage.PersistInterval, ErrInvalidThreshold)
	}

	switch c.Quality.Strategy {
	case "word_count":
		if c.Quality.MinWords <= 0 {
			return fmt.Errorf("quality.min_words=%d: %w", c.Quality.MinWords, ErrInvalidThreshold)
		}
	case "text_density":
		if c.Quality.MinTextRatio <= 0 || c.Quality.MinTextRatio > 1 {
			return fmt.Errorf("quality.min_text_ratio=%v: %w", c.Quality.MinTextRatio, ErrInvalidThreshold)
		}
		if c.Quality.MinKeywordHits > 0 && len(c.Quality.Keywords) == 0 {
			return ErrNoKeywords
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, c.Quality.Strategy)
	}

	switch c.Content.Extractor {
	case "visible", "main":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownExtractor, c.Content.Extractor)
	}

	switch c.Storage.Type {
	case "file", "sqlite":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorage, c.Storage.Type)
	}

	if suffix := c.Stats.SubdomainSuffix; suffix != "" {
		// A bare public suffix such as "edu" would fold unrelated sites into one report.
		ps, icann := publicsuffix.PublicSuffix(suffix)
		if icann && ps == suffix {
			return fmt.Errorf("%w: %q", ErrPublicSuffix, suffix)
		}
	}

	return nil
}
