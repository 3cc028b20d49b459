package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment  string             `toml:"environment"` // "development" or "production"
	DebugMode    bool               `toml:"debug_mode"`  // Run the pipeline once and exit, ignoring the scheduler
	Storage      StorageConfig      `toml:"storage"`
	Logging      LoggingConfig      `toml:"logging"`
	Scraper      ScraperConfig      `toml:"scraper"`
	Review       ReviewConfig       `toml:"review"`
	Notification NotificationConfig `toml:"notification"`
	Scheduler    SchedulerConfig    `toml:"scheduler"`
	Export       ExportConfig       `toml:"export"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// ScraperConfig contains crawl behavior shared by all source strategies
type ScraperConfig struct {
	UserAgent        string        `toml:"user_agent"`         // Browser user agent string
	Headless         bool          `toml:"headless"`           // Run browsers headless (default: true)
	DelayMin         time.Duration `toml:"delay_min"`          // Minimum human-like delay between page actions
	DelayMax         time.Duration `toml:"delay_max"`          // Maximum human-like delay between page actions
	MaxRetries       int           `toml:"max_retries"`        // Retry attempts for navigation/extraction steps
	RetryBaseDelay   time.Duration `toml:"retry_base_delay"`   // Base delay for exponential backoff
	TimeRangeDays    int           `toml:"time_range_days" validate:"min=1"` // Recency window for harvested articles
	CrawlTimeout     time.Duration `toml:"crawl_timeout"`      // Overall timeout for one (source, zip) crawl
	PolitenessDelay  time.Duration `toml:"politeness_delay"`   // Delay between consecutive crawls
	LocalNewsLimit   int           `toml:"local_news_limit"`   // Max articles per local-news crawl
	RealEstateLimit  int           `toml:"real_estate_limit"`  // Max articles per real-estate crawl
	EnrichTimeout    time.Duration `toml:"enrich_timeout"`     // Timeout for fetching one article body
	ProfileDir       string        `toml:"profile_dir"`        // On-disk profile dir for persistent browser sessions
	FailedInsertsDir string        `toml:"failed_inserts_dir"` // Spool dir for records that fail to persist
}

// ReviewConfig contains the external review workflow endpoint settings
type ReviewConfig struct {
	Endpoint string        `toml:"endpoint" validate:"omitempty,url"`
	APIKey   string        `toml:"api_key"`
	Timeout  time.Duration `toml:"timeout"`
	User     string        `toml:"user"` // Caller identity forwarded to the workflow
}

// NotificationConfig controls failure notification delivery
type NotificationConfig struct {
	Enabled bool       `toml:"enabled"`
	Type    string     `toml:"type" validate:"omitempty,oneof=log email"` // "log" or "email"
	SMTP    SMTPConfig `toml:"smtp"`
}

type SMTPConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	From     string `toml:"from"`
	To       string `toml:"to"`
}

// SchedulerConfig controls cron-driven ingestion runs
type SchedulerConfig struct {
	Enabled  bool   `toml:"enabled"`
	Timezone string `toml:"timezone"` // IANA name, e.g. "America/New_York"
}

type ExportConfig struct {
	OutputDir string `toml:"output_dir"` // Directory for JSON snapshot artifacts
}

// NewDefaultConfig returns a config populated with defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/playnews",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
		Scraper: ScraperConfig{
			UserAgent:        "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Headless:         true,
			DelayMin:         1 * time.Second,
			DelayMax:         3 * time.Second,
			MaxRetries:       3,
			RetryBaseDelay:   1 * time.Second,
			TimeRangeDays:    7,
			CrawlTimeout:     5 * time.Minute,
			PolitenessDelay:  2 * time.Second,
			LocalNewsLimit:   10,
			RealEstateLimit:  20,
			EnrichTimeout:    30 * time.Second,
			ProfileDir:       "./data/profiles",
			FailedInsertsDir: "./logs/failed_inserts",
		},
		Review: ReviewConfig{
			Timeout: 30 * time.Second,
			User:    "playnews-harvester",
		},
		Notification: NotificationConfig{
			Enabled: true,
			Type:    "log",
			SMTP:    SMTPConfig{Port: 587},
		},
		Scheduler: SchedulerConfig{
			Enabled:  true,
			Timezone: "America/New_York",
		},
		Export: ExportConfig{
			OutputDir: "./output",
		},
	}
}

// LoadFromFiles loads configuration from defaults, then merges each file in
// order (later files override earlier ones), then applies env overrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the loaded configuration for structural problems
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Notification.Type == "email" {
		s := c.Notification.SMTP
		if s.Host == "" || s.Username == "" || s.Password == "" || s.To == "" {
			return fmt.Errorf("email notifications require smtp host, username, password and to")
		}
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("PLAYNEWS_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if debug := os.Getenv("PLAYNEWS_DEBUG_MODE"); debug != "" {
		if b, err := strconv.ParseBool(debug); err == nil {
			config.DebugMode = b
		}
	}

	if badgerPath := os.Getenv("PLAYNEWS_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	if level := os.Getenv("PLAYNEWS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if userAgent := os.Getenv("PLAYNEWS_SCRAPER_USER_AGENT"); userAgent != "" {
		config.Scraper.UserAgent = userAgent
	}
	if headless := os.Getenv("PLAYNEWS_SCRAPER_HEADLESS"); headless != "" {
		if b, err := strconv.ParseBool(headless); err == nil {
			config.Scraper.Headless = b
		}
	}
	if days := os.Getenv("PLAYNEWS_SCRAPE_TIME_RANGE_DAYS"); days != "" {
		if d, err := strconv.Atoi(days); err == nil {
			config.Scraper.TimeRangeDays = d
		}
	}
	if retries := os.Getenv("PLAYNEWS_SCRAPE_RETRY_MAX"); retries != "" {
		if r, err := strconv.Atoi(retries); err == nil {
			config.Scraper.MaxRetries = r
		}
	}
	if timeout := os.Getenv("PLAYNEWS_CRAWL_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Scraper.CrawlTimeout = d
		}
	}

	if endpoint := os.Getenv("PLAYNEWS_REVIEW_ENDPOINT"); endpoint != "" {
		config.Review.Endpoint = endpoint
	}
	if apiKey := os.Getenv("PLAYNEWS_REVIEW_API_KEY"); apiKey != "" {
		config.Review.APIKey = apiKey
	}

	if enabled := os.Getenv("PLAYNEWS_SCHEDULER_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			config.Scheduler.Enabled = b
		}
	}
	if tz := os.Getenv("PLAYNEWS_SCHEDULER_TIMEZONE"); tz != "" {
		config.Scheduler.Timezone = tz
	}

	if notifType := os.Getenv("PLAYNEWS_NOTIFICATION_TYPE"); notifType != "" {
		config.Notification.Type = notifType
	}
	if outputDir := os.Getenv("PLAYNEWS_EXPORT_OUTPUT_DIR"); outputDir != "" {
		config.Export.OutputDir = outputDir
	}
}

// IsProduction returns true when running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
