package commands

import (
	"context"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/kssbuilder/internal/build"
	foundationerrors "git.home.luguber.info/inful/kssbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/kssbuilder/internal/kss"
	"git.home.luguber.info/inful/kssbuilder/internal/styleguide"
)

// DiscoverCmd implements the 'discover' command.
type DiscoverCmd struct {
	Source string `short:"s" help:"Directory scanned for documented stylesheets"`
	Files  bool   `help:"Also list the parsed source files"`
}

func (d *DiscoverCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root, SourceFlags{Source: d.Source})
	if err != nil {
		return err
	}
	sg, err := kss.Traverse(context.Background(), cfg.Source, build.ParserOptions(cfg))
	if err != nil {
		return foundationerrors.ParseError("parse styleguide").WithCause(err).
			WithContext("source", cfg.Source).Build()
	}

	out := g.out()
	roots, malformed := styleguide.CollectRoots(sg.All())
	_, _ = fmt.Fprintf(out, "%d sections in %d roots\n", sg.Len(), len(roots))
	for _, r := range roots {
		for _, s := range styleguide.ChildrenOf(sg.All(), r) {
			indent := strings.Repeat("  ", s.Depth()-1)
			_, _ = fmt.Fprintf(out, "%s%s %s  (%s:%d)\n", indent, s.Reference, s.Header, s.File, s.Line)
		}
	}
	for _, s := range malformed {
		_, _ = fmt.Fprintf(out, "malformed reference %q (%s:%d)\n", s.Reference, s.File, s.Line)
	}
	for _, w := range sg.Warnings() {
		_, _ = fmt.Fprintf(out, "warning: %s\n", w)
	}
	if d.Files {
		for _, f := range sg.Files() {
			_, _ = fmt.Fprintf(out, "file: %s\n", f)
		}
	}
	return nil
}
