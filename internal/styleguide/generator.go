package styleguide

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	foundationerrors "git.home.luguber.info/inful/kssbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/kssbuilder/internal/fsutil"
	"git.home.luguber.info/inful/kssbuilder/internal/kss"
	"git.home.luguber.info/inful/kssbuilder/internal/logfields"
	"git.home.luguber.info/inful/kssbuilder/internal/metrics"
	"git.home.luguber.info/inful/kssbuilder/internal/observability"
)

// PageKind distinguishes section pages from the overview page.
type PageKind string

const (
	PageSection PageKind = "section"
	PageIndex   PageKind = "index"
)

// Page is one emitted artifact.
type Page struct {
	Kind    PageKind
	Root    string // empty for the index page
	Path    string // relative to Options.OutputDir
	Content []byte
	Written bool // false when the writer found the file unchanged
}

// PageFailure records a page that could not be rendered or written.
type PageFailure struct {
	Root string
	Path string
	Err  error
}

func (f PageFailure) Error() string {
	if f.Root == "" {
		return fmt.Sprintf("index page %s: %v", f.Path, f.Err)
	}
	return fmt.Sprintf("section page %s (root %s): %v", f.Path, f.Root, f.Err)
}

func (f PageFailure) Unwrap() error { return f.Err }

// Report is the outcome of one generation pass.
type Report struct {
	Roots     []string
	Malformed []*kss.Section
	Pages     []Page // section pages in root order, then the index page
	Overview  *Overview
	Failures  []PageFailure
}

// Partial reports whether at least one page failed.
func (r *Report) Partial() bool { return len(r.Failures) > 0 }

// PageWriter persists a rendered page. It reports false when the page was
// left untouched because it is already up to date.
type PageWriter interface {
	WritePage(ctx context.Context, dir string, page Page) (bool, error)
}

// FileWriter writes every page atomically under dir.
type FileWriter struct{}

func (FileWriter) WritePage(_ context.Context, dir string, page Page) (bool, error) {
	if err := fsutil.WriteFileAtomic(filepath.Join(dir, page.Path), page.Content, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// Options configures a Generator.
type Options struct {
	OutputDir    string
	Paths        PathScheme
	Concurrency  int
	OverviewPath string // markdown source of the index page; may not exist
	Argv         map[string]string
	Build        BuildInfo
	Writer       PageWriter
	Recorder     metrics.Recorder
}

// Generator renders the pages of one styleguide snapshot. Its template
// helpers are bound to that snapshot and shared by nothing else.
type Generator struct {
	sg          *kss.Styleguide
	tpl         *template.Template
	opts        Options
	links       []RootLink
	hasOverview bool
}

// NewGenerator parses tpl with helpers bound to sg.
func NewGenerator(sg *kss.Styleguide, tpl *Template, opts Options) (*Generator, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.GOMAXPROCS(0)
	}
	if opts.Writer == nil {
		opts.Writer = FileWriter{}
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Paths.Mode == "" {
		opts.Paths.Mode = ModeStatic
	}

	g := &Generator{
		sg:          sg,
		opts:        opts,
		hasOverview: opts.OverviewPath != "" && fsutil.Exists(opts.OverviewPath),
	}
	roots, _ := CollectRoots(sg.All())
	g.links = rootLinks(sg, roots, opts.Paths)

	parsed, err := template.New(TemplateFile).Funcs(helperFuncs(sg, g.links, opts.Paths)).Parse(tpl.Source)
	if err != nil {
		return nil, foundationerrors.RenderError("parse page template").WithCause(err).
			WithContext("template", tpl.Origin).Fatal().Build()
	}
	g.tpl = parsed
	return g, nil
}

func rootLinks(sg *kss.Styleguide, roots []string, paths PathScheme) []RootLink {
	links := make([]RootLink, 0, len(roots))
	for _, r := range roots {
		link := RootLink{Number: r, Href: paths.Link(r)}
		if s, ok := sg.Get(r); ok {
			link.Header = s.Header
		}
		links = append(links, link)
	}
	return links
}

// Generate groups the snapshot by root, renders one page per root and then
// the index page. A failing page is recorded in the report and never stops
// its siblings. The returned error is non-nil only on cancellation.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	report, err := g.GenerateSections(ctx)
	if err != nil {
		return report, err
	}
	g.AppendIndex(ctx, report)
	return report, nil
}

// GenerateSections renders the per-root pages concurrently. Results keep
// root order.
func (g *Generator) GenerateSections(ctx context.Context) (*Report, error) {
	sections := g.sg.All()
	roots, malformed := CollectRoots(sections)
	report := &Report{Roots: roots, Malformed: malformed}
	for _, s := range malformed {
		observability.WarnContext(ctx, "Skipping section with malformed reference",
			logfields.Reference(s.Reference), logfields.File(s.File))
	}

	results := runOrdered(roots, g.opts.Concurrency, func(root string) (Page, error) {
		placeholder := Page{Kind: PageSection, Root: root, Path: g.opts.Paths.SectionFile(root)}
		if err := ctx.Err(); err != nil {
			return placeholder, err
		}
		page, err := g.GeneratePage(ctx, ChildrenOf(sections, root), root, roots)
		if err != nil {
			return placeholder, err
		}
		return *page, nil
	})
	for _, res := range results {
		if res.Err != nil {
			report.Failures = append(report.Failures, PageFailure{Root: res.Value.Root, Path: res.Value.Path, Err: res.Err})
			continue
		}
		report.Pages = append(report.Pages, res.Value)
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// AppendIndex renders the index page for a report produced by
// GenerateSections and records the outcome in it.
func (g *Generator) AppendIndex(ctx context.Context, report *Report) {
	path := g.opts.Paths.IndexFile()
	overview, err := LoadOverview(g.opts.OverviewPath)
	if err != nil {
		report.Failures = append(report.Failures, PageFailure{Path: path, Err: foundationerrors.RenderError("load overview").WithCause(err).
			WithContext("path", g.opts.OverviewPath).Build()})
		return
	}
	report.Overview = overview
	index, err := g.renderIndex(ctx, RootSections(g.sg.All(), report.Roots), report.Roots, overview)
	if err != nil {
		report.Failures = append(report.Failures, PageFailure{Path: path, Err: err})
	} else if index != nil {
		report.Pages = append(report.Pages, *index)
	}
}

// GeneratePage renders and writes the page for one root group.
func (g *Generator) GeneratePage(ctx context.Context, children []*kss.Section, root string, roots []string) (*Page, error) {
	ctx = observability.WithRoot(ctx, root)
	header := "Unnamed"
	if len(children) > 0 && children[0].Reference == root && children[0].Header != "" {
		header = children[0].Header
	}
	observability.InfoContext(ctx, "Generating section page", logfields.Header(header))

	data := g.baseContext(roots)
	data.Sections = projectSections(children)
	data.RootNumber = root
	page := Page{Kind: PageSection, Root: root, Path: g.opts.Paths.SectionFile(root)}
	return g.emit(ctx, page, data)
}

// GenerateIndex renders the overview page from rootSections, the depth-1
// section of every root. Without an overview source it does nothing and
// returns a nil page.
func (g *Generator) GenerateIndex(ctx context.Context, rootSections []*kss.Section, roots []string) (*Page, error) {
	overview, err := LoadOverview(g.opts.OverviewPath)
	if err != nil {
		return nil, foundationerrors.RenderError("load overview").WithCause(err).
			WithContext("path", g.opts.OverviewPath).Build()
	}
	return g.renderIndex(ctx, rootSections, roots, overview)
}

func (g *Generator) renderIndex(ctx context.Context, rootSections []*kss.Section, roots []string, overview *Overview) (*Page, error) {
	if overview == nil {
		observability.DebugContext(ctx, "No overview found, skipping index page", logfields.Path(g.opts.OverviewPath))
		return nil, nil
	}
	observability.InfoContext(ctx, "Generating index page", logfields.Path(overview.Path))

	data := g.baseContext(roots)
	data.Sections = projectSections(rootSections)
	data.Overview = overview.HTML
	data.OverviewMeta = overview.Meta
	data.HasOverview = true
	return g.emit(ctx, Page{Kind: PageIndex, Path: g.opts.Paths.IndexFile()}, data)
}

func (g *Generator) baseContext(roots []string) PageContext {
	return PageContext{
		SectionRoots: roots,
		Roots:        g.links,
		HasOverview:  g.hasOverview,
		Argv:         g.opts.Argv,
		Build:        g.opts.Build,
	}
}

func (g *Generator) emit(ctx context.Context, page Page, data PageContext) (*Page, error) {
	start := time.Now()
	kind := string(page.Kind)

	var buf bytes.Buffer
	if err := g.tpl.Execute(&buf, data); err != nil {
		g.opts.Recorder.IncPageResult(kind, metrics.ResultFailed)
		observability.ErrorContext(ctx, "Page render failed", logfields.Page(page.Path), logfields.Error(err))
		return nil, foundationerrors.RenderError("render page").WithCause(err).
			WithContext("page", page.Path).WithContext("root", page.Root).Build()
	}
	page.Content = buf.Bytes()

	written, err := g.opts.Writer.WritePage(ctx, g.opts.OutputDir, page)
	if err != nil {
		g.opts.Recorder.IncPageResult(kind, metrics.ResultFailed)
		observability.ErrorContext(ctx, "Page write failed", logfields.Page(page.Path), logfields.Error(err))
		return nil, foundationerrors.FileSystemError("write page").WithCause(err).
			WithContext("page", page.Path).WithContext("root", page.Root).Build()
	}
	page.Written = written
	if written {
		g.opts.Recorder.IncPageResult(kind, metrics.ResultSuccess)
	} else {
		g.opts.Recorder.IncPageResult(kind, metrics.ResultSkipped)
	}
	observability.DebugContext(ctx, "Page emitted",
		logfields.Page(page.Path),
		slog.Bool("written", written),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
	return &page, nil
}
