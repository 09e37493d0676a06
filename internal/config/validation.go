package config

import (
	"fmt"
	"path/filepath"
	"strings"

	foundationerrors "git.home.luguber.info/inful/kssbuilder/internal/foundation/errors"
)

// Validate checks a defaulted configuration and returns a classified
// validation error describing the first problem found.
func Validate(cfg *Config) error {
	v := &configurationValidator{config: cfg}
	for _, check := range []func() error{
		v.validatePaths,
		v.validateParser,
		v.validateRoutes,
		v.validateWatch,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

type configurationValidator struct {
	config *Config
}

func invalid(field, format string, args ...any) error {
	return foundationerrors.ValidationError(fmt.Sprintf(format, args...)).
		WithContext("field", field).
		Build()
}

func (cv *configurationValidator) validatePaths() error {
	c := cv.config
	if strings.TrimSpace(c.Source) == "" {
		return invalid("source", "source directory cannot be empty")
	}
	if strings.TrimSpace(c.Destination) == "" {
		return invalid("destination", "destination directory cannot be empty")
	}
	src, _ := filepath.Abs(c.Source)
	dst, _ := filepath.Abs(c.Destination)
	if src == dst {
		return invalid("destination", "destination %q must differ from source", c.Destination)
	}
	if filepath.IsAbs(c.Stylesheet.Output) || strings.HasPrefix(filepath.Clean(c.Stylesheet.Output), "..") {
		return invalid("stylesheet.output", "stylesheet output %q must be relative to the destination", c.Stylesheet.Output)
	}
	return nil
}

func (cv *configurationValidator) validateParser() error {
	for _, ext := range cv.config.Parser.Extensions {
		if len(ext) < 2 || strings.ContainsAny(ext, `/\`) {
			return invalid("parser.extensions", "invalid file extension %q", ext)
		}
	}
	return nil
}

func (cv *configurationValidator) validateRoutes() error {
	r := cv.config.Routes
	if !r.Enabled {
		return nil
	}
	if strings.Count(r.LineFormat, "%s") != 1 {
		return invalid("routes.line_format", "route line format must contain exactly one %%s: %q", r.LineFormat)
	}
	if strings.TrimSpace(r.Anchor) == "" {
		return invalid("routes.anchor", "route anchor cannot be empty")
	}
	return nil
}

func (cv *configurationValidator) validateWatch() error {
	if cv.config.Watch.RebuildInterval < 0 {
		return invalid("watch.rebuild_interval", "rebuild interval cannot be negative")
	}
	return nil
}
