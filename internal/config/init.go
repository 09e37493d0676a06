package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	foundationerrors "git.home.luguber.info/inful/kssbuilder/internal/foundation/errors"
)

// Init writes an example configuration file to path.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return foundationerrors.ValidationError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", path)).
			WithContext("path", path).Build()
	}

	minify := true
	example := Config{
		Source:      "styles",
		Template:    "styleguide-template",
		Destination: DefaultDestination,
		Overview:    DefaultOverview,
		Stylesheet:  StylesheetConfig{Output: DefaultStylesheetOutput, Minify: &minify},
		Parser:      ParserConfig{Extensions: DefaultExtensions},
		Build:       BuildConfig{Concurrency: 4, Incremental: true},
		Notify:      NotifyConfig{Subject: DefaultNotifySubject},
		Watch:       WatchConfig{RebuildInterval: 30 * time.Minute},
		Logging:     LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
		Argv:        map[string]string{"title": "Styleguide"},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return foundationerrors.InternalError("failed to marshal config").WithCause(err).Build()
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return foundationerrors.FileSystemError("failed to write config file").WithCause(err).
			WithContext("path", path).Build()
	}
	return nil
}
