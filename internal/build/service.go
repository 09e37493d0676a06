package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/kssbuilder/internal/config"
	"git.home.luguber.info/inful/kssbuilder/internal/git"
	"git.home.luguber.info/inful/kssbuilder/internal/kss"
	"git.home.luguber.info/inful/kssbuilder/internal/linkcheck"
	"git.home.luguber.info/inful/kssbuilder/internal/styleguide"
)

// Service is the entry point for every build, whether started by the CLI
// or by watch mode.
type Service interface {
	Run(ctx context.Context, req Request) (*Result, error)
}

// Request carries the inputs of one build.
type Request struct {
	Config *config.Config
	// Strict turns page failures into a failed build. It is OR-ed with
	// build.strict from the configuration.
	Strict bool
}

// Status is the overall outcome of a build.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusPartial   Status = "partial"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// IsSuccess reports whether every page was produced.
func (s Status) IsSuccess() bool { return s == StatusSuccess }

// Stage names, also used as metric and log labels.
const (
	StagePrepare    = "prepare"
	StageAssets     = "assets"
	StageStylesheet = "stylesheet"
	StageParse      = "parse"
	StagePages      = "pages"
	StageIndex      = "index"
	StageRoutes     = "routes"
	StageLinkcheck  = "linkcheck"
	StageManifest   = "manifest"
	StageNotify     = "notify"
)

// Result describes a finished build.
type Result struct {
	BuildID   string
	Status    Status
	OutputDir string

	Roots       []string
	Sections    int
	Files       []string
	Warnings    []kss.Warning
	Malformed   []string // references that belong to no root
	Pages       []string // emitted page paths relative to OutputDir
	Written     int
	Skipped     int // unchanged pages left in place by incremental builds
	Failures    []styleguide.PageFailure
	BrokenLinks []linkcheck.BrokenLink
	Routes      []string // routes newly registered in the router manifest
	Stylesheet  string   // compiled stylesheet path, empty when none
	Revision    git.Revision

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// ParserOptions maps parser configuration onto kss options.
func ParserOptions(cfg *config.Config) kss.Options {
	return kss.Options{
		Extensions: cfg.Parser.Extensions,
		Multiline:  cfg.Parser.MultilineEnabled(),
		Markdown:   cfg.Parser.MarkdownEnabled(),
	}
}
