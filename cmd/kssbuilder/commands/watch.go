package commands

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/kssbuilder/internal/build"
	"git.home.luguber.info/inful/kssbuilder/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	SourceFlags `embed:""`
	Every       time.Duration `help:"Also rebuild on this interval (e.g. 10m); overrides watch.rebuild_interval"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root, w.SourceFlags)
	if err != nil {
		return err
	}
	if w.Every > 0 {
		cfg.Watch.RebuildInterval = w.Every
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc, closePublisher := newService(ctx, cfg)
	defer closePublisher()

	dirs := []string{cfg.Source}
	if cfg.Template != "" {
		dirs = append(dirs, cfg.Template)
	}
	exclude := []string{cfg.Destination}
	if cfg.Routes.Enabled {
		exclude = append(exclude, cfg.Routes.TemplatesDir, cfg.Routes.RoutesDir, cfg.Routes.RouterFile)
	}

	return watch.Run(ctx, watch.Options{
		Dirs:     dirs,
		Exclude:  exclude,
		Debounce: cfg.Watch.Debounce,
		Every:    cfg.Watch.RebuildInterval,
	}, func(ctx context.Context) error {
		_, err := svc.Run(ctx, build.Request{Config: cfg})
		return err
	})
}
