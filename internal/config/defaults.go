package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Default values applied by applyDefaults.
const (
	DefaultSource           = "."
	DefaultDestination      = "styleguide"
	DefaultOverview         = "styleguide.md"
	DefaultStylesheetOutput = "public/kss.css"
	DefaultNotifySubject    = "kssbuilder.build"
	DefaultRouteAnchor      = "Router.map(function() {"
	DefaultRouteLineFormat  = "  this.route('%s');"
	DefaultRouterFile       = "app/router.js"
	DefaultRoutesDir        = "app/routes"
	DefaultTemplatesDir     = "app/templates"
	DefaultTemplateExt      = ".hbs"
	DefaultWatchDebounce    = 300 * time.Millisecond
)

// DefaultExtensions lists the stylesheet extensions scanned for comments.
var DefaultExtensions = []string{".css", ".less", ".scss", ".sass", ".styl"}

func applyDefaults(cfg *Config) {
	if cfg.Source == "" {
		cfg.Source = DefaultSource
	}
	if cfg.Destination == "" {
		cfg.Destination = DefaultDestination
	}
	if cfg.Overview == "" {
		cfg.Overview = DefaultOverview
	}
	if cfg.Stylesheet.Output == "" {
		cfg.Stylesheet.Output = DefaultStylesheetOutput
	}
	if len(cfg.Parser.Extensions) == 0 {
		cfg.Parser.Extensions = append([]string(nil), DefaultExtensions...)
	}
	for i, ext := range cfg.Parser.Extensions {
		if ext != "" && ext[0] != '.' {
			cfg.Parser.Extensions[i] = "." + ext
		}
	}
	if cfg.Build.Concurrency <= 0 {
		cfg.Build.Concurrency = runtime.GOMAXPROCS(0)
	}
	applyRouteDefaults(&cfg.Routes)
	if cfg.Notify.Subject == "" {
		cfg.Notify.Subject = DefaultNotifySubject
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}
	applyLoggingDefaults(&cfg.Logging)
}

func applyRouteDefaults(r *RoutesConfig) {
	if r.RouterFile == "" {
		r.RouterFile = DefaultRouterFile
	}
	if r.RoutesDir == "" {
		r.RoutesDir = DefaultRoutesDir
	}
	if r.TemplatesDir == "" {
		r.TemplatesDir = DefaultTemplatesDir
	}
	if r.TemplateExt == "" {
		r.TemplateExt = DefaultTemplateExt
	} else if r.TemplateExt[0] != '.' {
		r.TemplateExt = "." + r.TemplateExt
	}
	if r.Anchor == "" {
		r.Anchor = DefaultRouteAnchor
	}
	if r.LineFormat == "" {
		r.LineFormat = DefaultRouteLineFormat
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	level := string(l.Level)
	if env := os.Getenv("KSSBUILDER_LOG_LEVEL"); env != "" && level == "" {
		level = env
	}
	l.Level = NormalizeLogLevel(level)
	l.Format = NormalizeLogFormat(string(l.Format))
}

// OverviewPath resolves the overview file against the source directory
// unless it is absolute.
func (c *Config) OverviewPath() string {
	if c.Overview == "" || filepath.IsAbs(c.Overview) {
		return c.Overview
	}
	return filepath.Join(c.Source, c.Overview)
}
