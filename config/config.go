// Package config loads csvboard settings from defaults, an optional config
// file and the environment.
package config

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/ka2n/csvboard/log"
	"github.com/morikuni/failure/v2"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// ErrorCode defines error types for configuration loading
type ErrorCode string

const (
	ErrConfigRead    ErrorCode = "ConfigRead"
	ErrConfigDecode  ErrorCode = "ConfigDecode"
	ErrConfigInvalid ErrorCode = "ConfigInvalid"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}

// EnvPrefix is the prefix of environment overrides, e.g. CSVBOARD_LISTEN.
const EnvPrefix = "CSVBOARD"

// DefaultBaseURL is the folder the board reads when nothing else is configured.
const DefaultBaseURL = "https://raw.githubusercontent.com/mingchen112001-crypto/csv-dashboard/main/data"

// Source is one CSV file shown as a tab.
type Source struct {
	ID    string `mapstructure:"id" validate:"required,excludesall=/ #?"`
	Title string `mapstructure:"title"`
	File  string `mapstructure:"file" validate:"required"`
}

// DisplayTitle returns Title, or the file name when no title is set.
func (s Source) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return s.File
}

// Config holds all runtime configuration.
// Values are populated from csvboard.yaml, CSVBOARD_* env vars and the
// legacy RAW_BASE / GITHUB_TOKEN variables.
type Config struct {
	BaseURL         string        `mapstructure:"base_url" validate:"required,url"`
	GitHubToken     string        `mapstructure:"github_token"`
	GitHubAPIURL    string        `mapstructure:"github_api_url" validate:"required,url"`
	Listen          string        `mapstructure:"listen" validate:"required"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	FreshnessTTL    time.Duration `mapstructure:"freshness_ttl" validate:"gt=0"`
	DisplayTimezone string        `mapstructure:"display_timezone" validate:"required"`
	DisplaySuffix   string        `mapstructure:"display_suffix"`
	Sources         []Source      `mapstructure:"sources" validate:"required,min=1,unique=ID,dive"`
}

// DefaultSources mirrors the exports produced by the options screener job.
var DefaultSources = []Source{
	{ID: "bestoption", Title: "Best Options", File: "best_option.csv"},
	{ID: "coveredcall", Title: "Covered Call Income", File: "covered_call_income.csv"},
	{ID: "bestput", Title: "Best Put Option", File: "best_put.csv"},
	{ID: "putincome", Title: "Cash Secured Put Income", File: "put_income.csv"},
	{ID: "ivspike", Title: "IV Spike Log", File: "iv_spike_log.csv"},
}

var validate = validator.New()

// Loader reads configuration and optionally watches the config file.
type Loader struct {
	v *viper.Viper
}

// NewLoader prepares a loader. path may be empty, in which case csvboard.yaml
// (or .toml/.json) is looked up in the working directory, then in
// UserConfigDir, and is optional.
func NewLoader(path string) (*Loader, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// unprefixed names kept for deployments configured before the rename
	_ = v.BindEnv("base_url", EnvPrefix+"_BASE_URL", "RAW_BASE")
	_ = v.BindEnv("github_token", EnvPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("csvboard")
		v.AddConfigPath(".")
		v.AddConfigPath(UserConfigDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, failure.New(ErrConfigRead,
				failure.Message("Failed to read config file"),
				failure.Context{"path": path, "error": err.Error()},
			)
		}
	}

	return &Loader{v: v}, nil
}

// UserConfigDir is the per-user directory searched after the working directory.
func UserConfigDir() string {
	return filepath.Join(xdg.ConfigHome, "csvboard")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("github_token", "")
	v.SetDefault("github_api_url", "https://api.github.com")
	v.SetDefault("listen", ":5055")
	v.SetDefault("request_timeout", 10*time.Second)
	v.SetDefault("freshness_ttl", 300*time.Second)
	v.SetDefault("display_timezone", "America/New_York")
	v.SetDefault("display_suffix", "ET")

	sources := make([]map[string]any, 0, len(DefaultSources))
	for _, s := range DefaultSources {
		sources = append(sources, map[string]any{"id": s.ID, "title": s.Title, "file": s.File})
	}
	v.SetDefault("sources", sources)
}

// File returns the config file in use, or "".
func (l *Loader) File() string {
	return l.v.ConfigFileUsed()
}

// Config decodes and validates the current settings.
func (l *Loader) Config() (Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return Config{}, failure.New(ErrConfigDecode,
			failure.Message("Failed to decode configuration"),
			failure.Context{"error": err.Error()},
		)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Watch calls fn whenever the config file changes. Only the source list is
// applied while running: fn receives the configuration in effect, which is the
// one loaded at startup with the new sources. Edits to other fields are logged
// as needing a restart. Invalid edits are logged and skipped. It does nothing
// without a config file.
func (l *Loader) Watch(fn func(Config)) {
	if l.File() == "" {
		return
	}
	applied, err := l.Config()
	if err != nil {
		log.Warn("Not watching invalid config file", "file", l.File(), "error", err)
		return
	}

	var mu sync.Mutex
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := l.Config()
		if err != nil {
			log.Warn("Ignoring invalid config change", "file", e.Name, "error", err)
			return
		}

		mu.Lock()
		defer mu.Unlock()
		if ignored := applied.RestartRequired(cfg); len(ignored) > 0 {
			log.Warn("Config changes need a restart and were not applied", "file", e.Name, "fields", ignored)
		}
		applied.Sources = cfg.Sources
		log.Info("Sources reloaded", "file", e.Name, "sources", len(applied.Sources))
		fn(applied)
	})
	l.v.WatchConfig()
}

// RestartRequired lists the settings that differ between c and next and
// cannot be changed while running. Sources are not included.
func (c Config) RestartRequired(next Config) []string {
	var fields []string
	add := func(name string, changed bool) {
		if changed {
			fields = append(fields, name)
		}
	}
	add("base_url", c.BaseURL != next.BaseURL)
	add("github_token", c.GitHubToken != next.GitHubToken)
	add("github_api_url", c.GitHubAPIURL != next.GitHubAPIURL)
	add("listen", c.Listen != next.Listen)
	add("request_timeout", c.RequestTimeout != next.RequestTimeout)
	add("freshness_ttl", c.FreshnessTTL != next.FreshnessTTL)
	add("display_timezone", c.DisplayTimezone != next.DisplayTimezone)
	add("display_suffix", c.DisplaySuffix != next.DisplaySuffix)
	return fields
}

// Load reads configuration once.
func Load(path string) (Config, error) {
	l, err := NewLoader(path)
	if err != nil {
		return Config{}, err
	}
	return l.Config()
}

// Validate checks required fields and source uniqueness.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return failure.New(ErrConfigInvalid,
			failure.Message("Invalid configuration: "+err.Error()),
		)
	}
	return nil
}

// Source returns the source with the given id.
func (c Config) Source(id string) (Source, bool) {
	return lo.Find(c.Sources, func(s Source) bool {
		return s.ID == id
	})
}
