package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/kssbuilder/internal/build"
	"git.home.luguber.info/inful/kssbuilder/internal/config"
	"git.home.luguber.info/inful/kssbuilder/internal/logfields"
	"git.home.luguber.info/inful/kssbuilder/internal/metrics"
	"git.home.luguber.info/inful/kssbuilder/internal/notify"
)

// Global carries state shared by subcommands.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer // user-facing output; stdout when nil
}

func (g *Global) out() io.Writer {
	if g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (optional)" default:"kssbuilder.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build    BuildCmd    `cmd:"" help:"Generate the styleguide once"`
	Watch    WatchCmd    `cmd:"" help:"Generate the styleguide and rebuild on change"`
	Discover DiscoverCmd `cmd:"" help:"List documented sections without writing anything"`
	Init     InitCmd     `cmd:"" help:"Write an example configuration file"`
}

// AfterApply runs after flag parsing; sets up logging until the config
// file has been read.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := config.NormalizeLogLevel(os.Getenv("KSSBUILDER_LOG_LEVEL"))
	setupLogging(os.Stderr, level, config.LogFormatText, c.Verbose)
	return nil
}

// setupLogging installs the process logger. Verbose always wins over the
// configured level.
func setupLogging(w io.Writer, level config.LogLevel, format config.LogFormat, verbose bool) *slog.Logger {
	lvl := level.SlogLevel()
	if verbose {
		lvl = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// SourceFlags override configuration values for commands that build.
type SourceFlags struct {
	Source      string            `short:"s" help:"Directory scanned for documented stylesheets"`
	Template    string            `short:"t" help:"Template directory holding index.html and public/"`
	Destination string            `short:"d" help:"Output directory"`
	Stylesheet  string            `help:"Stylesheet entry file"`
	Overview    string            `help:"Markdown overview rendered on the index page"`
	Var         map[string]string `name:"var" help:"Template variable passed through as argv (key=value, repeatable)"`
	Routes      bool              `help:"Emit route templates and register them in the router manifest"`
}

// apply copies every flag that was set onto cfg.
func (f SourceFlags) apply(cfg *config.Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Source, f.Source)
	set(&cfg.Template, f.Template)
	set(&cfg.Destination, f.Destination)
	set(&cfg.Stylesheet.Entry, f.Stylesheet)
	set(&cfg.Overview, f.Overview)
	if len(f.Var) > 0 && cfg.Argv == nil {
		cfg.Argv = make(map[string]string, len(f.Var))
	}
	for k, v := range f.Var {
		cfg.Argv[k] = v
	}
	if f.Routes {
		cfg.Routes.Enabled = true
	}
}

// loadConfig reads the optional config file, applies flag overrides and
// re-validates the result. Logging is reconfigured from the final config.
func loadConfig(g *Global, root *CLI, flags SourceFlags) (*config.Config, error) {
	cfg, err := config.Load(root.Config, true)
	if err != nil {
		return nil, err
	}
	flags.apply(cfg)
	if err := config.Finalize(cfg); err != nil {
		return nil, err
	}
	g.Logger = setupLogging(os.Stderr, cfg.Logging.Level, cfg.Logging.Format, root.Verbose)
	return cfg, nil
}

// newService wires metrics and notifications from cfg. The returned cleanup
// closes the publisher.
func newService(ctx context.Context, cfg *config.Config) (*build.DefaultService, func()) {
	svc := build.NewService()
	if cfg.Metrics.Textfile != "" {
		svc.WithRecorder(metrics.NewPrometheusRecorder(nil))
	}
	pub, err := notify.New(cfg.Notify.NATSURL, cfg.Notify.Subject)
	if err != nil {
		slog.WarnContext(ctx, "Build notifications disabled", logfields.URL(cfg.Notify.NATSURL), logfields.Error(err))
		pub = notify.Noop{}
	}
	svc.WithPublisher(pub)
	return svc, pub.Close
}

func summary(res *build.Result) string {
	msg := fmt.Sprintf("Generated %s for %s in %s",
		plural(len(res.Pages), "page"), plural(len(res.Roots), "section root"), res.OutputDir)
	if res.Skipped > 0 {
		msg += fmt.Sprintf(" (%s unchanged)", plural(res.Skipped, "page"))
	}
	return msg
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
