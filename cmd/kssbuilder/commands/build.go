package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/kssbuilder/internal/build"
	"git.home.luguber.info/inful/kssbuilder/internal/config"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	SourceFlags `embed:""`
	Strict      bool `help:"Fail when any page could not be generated"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root, b.SourceFlags)
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	_, err = RunBuild(ctx, g, cfg, b.Strict)
	return err
}

// RunBuild runs one build and reports its outcome on g's output.
func RunBuild(ctx context.Context, g *Global, cfg *config.Config, strict bool) (*build.Result, error) {
	svc, closePublisher := newService(ctx, cfg)
	defer closePublisher()

	res, err := svc.Run(ctx, build.Request{Config: cfg, Strict: strict})
	if err != nil {
		return res, err
	}
	out := g.out()
	_, _ = fmt.Fprintln(out, summary(res))
	for _, f := range res.Failures {
		_, _ = fmt.Fprintf(out, "  failed: %v\n", f)
	}
	for _, l := range res.BrokenLinks {
		_, _ = fmt.Fprintf(out, "  broken link: %s\n", l)
	}
	if res.Status == build.StatusSuccess {
		_, _ = fmt.Fprintln(out, "Generation completed successfully!")
	}
	return res, nil
}
