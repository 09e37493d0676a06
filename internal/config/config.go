package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	foundationerrors "git.home.luguber.info/inful/kssbuilder/internal/foundation/errors"
)

// DefaultConfigFile is the config path used when --config is not given.
const DefaultConfigFile = "kssbuilder.yaml"

// Config represents the kssbuilder configuration file.
type Config struct {
	Source      string            `yaml:"source"`      // Directory scanned for documented stylesheets
	Template    string            `yaml:"template"`    // Template directory (index.html + public/); empty = embedded default
	Destination string            `yaml:"destination"` // Output directory for static pages
	Overview    string            `yaml:"overview"`    // Markdown overview for the index page; relative to source
	Stylesheet  StylesheetConfig  `yaml:"stylesheet"`
	Parser      ParserConfig      `yaml:"parser"`
	Build       BuildConfig       `yaml:"build"`
	Routes      RoutesConfig      `yaml:"routes"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Notify      NotifyConfig      `yaml:"notify"`
	Watch       WatchConfig       `yaml:"watch"`
	Logging     LoggingConfig     `yaml:"logging"`
	Argv        map[string]string `yaml:"argv,omitempty"` // Passed through to templates unchanged
}

// StylesheetConfig configures the stylesheet compile step.
type StylesheetConfig struct {
	Entry  string `yaml:"entry,omitempty"` // Entry file; empty = <destination>/public/kss.less when present
	Output string `yaml:"output"`          // Relative to destination
	Minify *bool  `yaml:"minify,omitempty"`
}

// MinifyEnabled reports whether compiled CSS is minified (default true).
func (s StylesheetConfig) MinifyEnabled() bool {
	return s.Minify == nil || *s.Minify
}

// ParserConfig configures documentation-comment parsing.
type ParserConfig struct {
	Extensions []string `yaml:"extensions"`
	Markdown   *bool    `yaml:"markdown,omitempty"`
	Multiline  *bool    `yaml:"multiline,omitempty"`
}

// MarkdownEnabled reports whether descriptions are rendered as markdown (default true).
func (p ParserConfig) MarkdownEnabled() bool { return p.Markdown == nil || *p.Markdown }

// MultilineEnabled reports whether /* */ blocks are parsed (default true).
func (p ParserConfig) MultilineEnabled() bool { return p.Multiline == nil || *p.Multiline }

// BuildConfig tunes page emission.
type BuildConfig struct {
	Concurrency int   `yaml:"concurrency"`
	Incremental bool  `yaml:"incremental"`
	CheckLinks  *bool `yaml:"check_links,omitempty"`
	Strict      bool  `yaml:"strict"` // Any page failure fails the build
}

// CheckLinksEnabled reports whether emitted pages are link-checked (default true).
func (b BuildConfig) CheckLinksEnabled() bool { return b.CheckLinks == nil || *b.CheckLinks }

// RoutesConfig configures the router deployment variant, where pages become
// route templates registered in a router manifest instead of static files.
type RoutesConfig struct {
	Enabled      bool   `yaml:"enabled"`
	RouterFile   string `yaml:"router_file"`
	RoutesDir    string `yaml:"routes_dir"`
	TemplatesDir string `yaml:"templates_dir"`
	TemplateExt  string `yaml:"template_ext"`
	Anchor       string `yaml:"anchor"`
	LineFormat   string `yaml:"line_format"`
}

// MetricsConfig configures metrics export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"` // node-exporter textfile path; empty = disabled
}

// NotifyConfig configures build notifications.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	RebuildInterval time.Duration `yaml:"rebuild_interval,omitempty"`
	Debounce        time.Duration `yaml:"debounce,omitempty"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Load reads the configuration at path, applies defaults and validates it.
// When optional is true a missing file yields the default configuration.
func Load(path string, optional bool) (*Config, error) {
	if err := loadEnvFile(); err != nil && !errors.Is(err, errNoEnvFile) {
		return nil, foundationerrors.ConfigError("load .env file").WithCause(err).Build()
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if uerr := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); uerr != nil {
			return nil, foundationerrors.ConfigError("failed to unmarshal config").WithCause(uerr).
				WithContext("path", path).Build()
		}
	case errors.Is(err, fs.ErrNotExist) && optional:
		// defaults only
	case errors.Is(err, fs.ErrNotExist):
		return nil, foundationerrors.NewError(foundationerrors.CategoryNotFound, fmt.Sprintf("configuration file not found: %s", path)).
			WithContext("path", path).Fatal().Build()
	default:
		return nil, foundationerrors.ConfigError("failed to read config file").WithCause(err).
			WithContext("path", path).Build()
	}

	if err := Finalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize applies defaults and validates cfg. Call it again after CLI
// overrides have been merged in.
func Finalize(cfg *Config) error {
	applyDefaults(cfg)
	return Validate(cfg)
}
