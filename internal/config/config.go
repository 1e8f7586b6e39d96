// Load envs from .env
// Load YAML config over built-in defaults
// Validate config

package config

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Range is an inclusive random delay window.
type Range struct {
	Min time.Duration `yaml:"min"`
	Max time.Duration `yaml:"max"`
}

// Random picks a duration uniformly inside the range.
func (r Range) Random() time.Duration {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + time.Duration(rand.Int63n(int64(r.Max-r.Min)+1))
}

type Delays struct {
	BetweenSearches  Range `yaml:"between_searches"`
	BetweenPosts     Range `yaml:"between_posts"`
	BetweenPages     Range `yaml:"between_pages"`
	BetweenPlatforms Range `yaml:"between_platforms"`
}

// Platform holds per-platform settings consumed by an adapter at construction.
type Platform struct {
	Enabled         bool                `yaml:"enabled"`
	CredentialsPath string              `yaml:"credentials_path"`
	Username        string              `yaml:"-"`
	Password        string              `yaml:"-"`
	Selectors       map[string][]string `yaml:"selectors"`
	Options         map[string]string   `yaml:"options"`
}

// Option returns an adapter option or fallback when unset.
func (p Platform) Option(key, fallback string) string {
	if v, ok := p.Options[key]; ok && v != "" {
		return v
	}
	return fallback
}

type Config struct {
	Keywords         []string `yaml:"keywords"`
	ContextKeywords  []string `yaml:"context_keywords"`
	NegativePatterns []string `yaml:"negative_patterns"`
	AdTitleKeywords  []string `yaml:"ad_title_keywords"`
	AdAuthorKeywords []string `yaml:"ad_author_keywords"`

	MaxPages      int  `yaml:"max_pages"`
	FetchContent  bool `yaml:"fetch_content"`
	AutosaveEvery int  `yaml:"autosave_every"`

	Delays Delays `yaml:"delays"`
	// RateLimits are advisory requests-per-minute ceilings. Enforcement is the
	// delay ranges above; these are only logged.
	RateLimits map[string]int `yaml:"rate_limits"`

	Browser   BrowserConfig       `yaml:"browser"`
	Fetcher   FetcherConfig       `yaml:"fetcher"`
	Platforms map[string]Platform `yaml:"platforms"`

	OutputDir string `yaml:"output_dir"`

	// Optional sinks, from env only.
	TelegramToken  string `yaml:"-"`
	TelegramChatID int64  `yaml:"-"`
	DatabaseURL    string `yaml:"-"`
}

type BrowserConfig struct {
	Headless  bool          `yaml:"headless"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
	Locale    string        `yaml:"locale"`
}

type FetcherConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// credentialEnv maps login-gated platforms to their username/password env vars.
var credentialEnv = map[string][2]string{
	"navercafe": {"NAVER_ID", "NAVER_PW"},
	"daumcafe":  {"DAUM_ID", "DAUM_PW"},
}

// Load reads .env and the YAML file at path over Default(). A missing YAML file
// is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// defaults only
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv returns the defaults with only the environment applied. It lets a
// caller reach the alert sinks when the YAML file itself cannot be loaded.
func FromEnv() *Config {
	_ = godotenv.Load()
	cfg := Default()
	_ = cfg.applyEnv()
	return cfg
}

func (c *Config) applyEnv() error {
	for name, keys := range credentialEnv {
		p, ok := c.Platforms[name]
		if !ok {
			continue
		}
		p.Username = os.Getenv(keys[0])
		p.Password = os.Getenv(keys[1])
		c.Platforms[name] = p
	}

	c.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		c.TelegramChatID = id
	}
	c.DatabaseURL = os.Getenv("DATABASE_URL")
	return nil
}

// Validate checks the values the pipeline cannot run without.
func (c *Config) Validate() error {
	if len(c.Keywords) == 0 {
		return errors.New("at least one keyword is required")
	}
	if len(c.ContextKeywords) == 0 {
		return errors.New("context_keywords must not be empty")
	}
	if c.MaxPages < 1 {
		return fmt.Errorf("max_pages must be >= 1, got %d", c.MaxPages)
	}
	if c.AutosaveEvery < 1 {
		return fmt.Errorf("autosave_every must be >= 1, got %d", c.AutosaveEvery)
	}
	for name, r := range map[string]Range{
		"between_searches":  c.Delays.BetweenSearches,
		"between_posts":     c.Delays.BetweenPosts,
		"between_pages":     c.Delays.BetweenPages,
		"between_platforms": c.Delays.BetweenPlatforms,
	} {
		if r.Min < 0 || r.Max < r.Min {
			return fmt.Errorf("delay %s: invalid range %s..%s", name, r.Min, r.Max)
		}
	}
	if c.OutputDir == "" {
		return errors.New("output_dir is required")
	}
	return nil
}

// EnabledPlatforms returns enabled platform names in the canonical run order.
func (c *Config) EnabledPlatforms() []string {
	var names []string
	for _, name := range PlatformOrder {
		if p, ok := c.Platforms[name]; ok && p.Enabled {
			names = append(names, name)
		}
	}
	return names
}
