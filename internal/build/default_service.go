package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/kssbuilder/internal/config"
	foundationerrors "git.home.luguber.info/inful/kssbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/kssbuilder/internal/fsutil"
	"git.home.luguber.info/inful/kssbuilder/internal/git"
	"git.home.luguber.info/inful/kssbuilder/internal/kss"
	"git.home.luguber.info/inful/kssbuilder/internal/linkcheck"
	"git.home.luguber.info/inful/kssbuilder/internal/logfields"
	"git.home.luguber.info/inful/kssbuilder/internal/manifest"
	"git.home.luguber.info/inful/kssbuilder/internal/metrics"
	"git.home.luguber.info/inful/kssbuilder/internal/notify"
	"git.home.luguber.info/inful/kssbuilder/internal/observability"
	"git.home.luguber.info/inful/kssbuilder/internal/router"
	"git.home.luguber.info/inful/kssbuilder/internal/styleguide"
	"git.home.luguber.info/inful/kssbuilder/internal/stylesheet"
	"git.home.luguber.info/inful/kssbuilder/internal/version"
)

// DefaultService is the standard Service implementation.
type DefaultService struct {
	recorder  metrics.Recorder
	publisher notify.Publisher
	now       func() time.Time
	newID     func() string
}

// NewService creates a DefaultService with no-op metrics and notifications.
func NewService() *DefaultService {
	return &DefaultService{
		recorder:  metrics.NoopRecorder{},
		publisher: notify.Noop{},
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// WithRecorder sets the metrics recorder.
func (s *DefaultService) WithRecorder(r metrics.Recorder) *DefaultService {
	if r != nil {
		s.recorder = r
	}
	return s
}

// WithPublisher sets the build event publisher.
func (s *DefaultService) WithPublisher(p notify.Publisher) *DefaultService {
	if p != nil {
		s.publisher = p
	}
	return s
}

// run holds the state shared by the stages of one build.
type run struct {
	cfg    *config.Config
	strict bool
	result *Result

	paths    styleguide.PathScheme
	tpl      *styleguide.Template
	previous *manifest.BuildManifest
	sg       *kss.Styleguide
	gen      *styleguide.Generator
	report   *styleguide.Report
}

type stage struct {
	name string
	fn   func(ctx context.Context) (metrics.ResultLabel, error)
}

// Run executes the pipeline. The error is non-nil when the build failed,
// was cancelled, or was partial under strict mode; the Result is always
// returned.
func (s *DefaultService) Run(ctx context.Context, req Request) (*Result, error) {
	start := s.now()
	result := &Result{BuildID: s.newID(), StartTime: start}
	ctx = observability.WithBuildID(ctx, result.BuildID)

	if req.Config == nil {
		return s.finish(ctx, nil, result, foundationerrors.ConfigError("config required").Build())
	}

	r := &run{cfg: req.Config, strict: req.Strict || req.Config.Build.Strict, result: result}
	r.paths = styleguide.PathScheme{Mode: styleguide.ModeStatic}
	result.OutputDir = req.Config.Destination
	if req.Config.Routes.Enabled {
		r.paths = styleguide.PathScheme{Mode: styleguide.ModeRoutes, Ext: req.Config.Routes.TemplateExt}
		result.OutputDir = req.Config.Routes.TemplatesDir
	}

	observability.InfoContext(ctx, "Starting styleguide build",
		logfields.Path(req.Config.Source),
		slog.String("destination", result.OutputDir),
		slog.String("mode", string(r.paths.Mode)))

	stages := []stage{
		{StagePrepare, r.prepare},
		{StageAssets, r.assets},
		{StageStylesheet, r.stylesheet},
		{StageParse, s.parseStage(r)},
		{StagePages, s.pagesStage(r)},
		{StageIndex, r.index},
		{StageRoutes, r.routes},
		{StageLinkcheck, r.linkcheck},
		{StageManifest, r.saveManifest},
	}
	for _, st := range stages {
		if err := s.runStage(ctx, st); err != nil {
			return s.finish(ctx, r, result, err)
		}
	}
	return s.finish(ctx, r, result, nil)
}

func (s *DefaultService) runStage(ctx context.Context, st stage) error {
	if err := ctx.Err(); err != nil {
		s.recorder.IncStageResult(st.name, metrics.ResultCanceled)
		return err
	}
	ctx = observability.WithStage(ctx, st.name)
	start := time.Now()
	label, err := st.fn(ctx)
	elapsed := time.Since(start)
	s.recorder.ObserveStageDuration(st.name, elapsed)

	if err != nil {
		if isCancellation(err) {
			label = metrics.ResultCanceled
		} else {
			label = metrics.ResultFatal
			observability.ErrorContext(ctx, "Stage failed", logfields.Error(err))
		}
	}
	s.recorder.IncStageResult(st.name, label)
	observability.DebugContext(ctx, "Stage complete",
		slog.String("result", string(label)),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000))
	return err
}

// pageStatus is the status of a build whose stages all completed: page
// failures make it partial, or failed under strict mode.
func pageStatus(failures int, strict bool) Status {
	switch {
	case failures == 0:
		return StatusSuccess
	case strict:
		return StatusFailed
	default:
		return StatusPartial
	}
}

// finish settles the status, publishes the build event and flushes metrics.
func (s *DefaultService) finish(ctx context.Context, r *run, result *Result, err error) (*Result, error) {
	switch {
	case err != nil && isCancellation(err):
		result.Status = StatusCancelled
		err = foundationerrors.WrapError(err, foundationerrors.CategoryCanceled, "build cancelled").Build()
	case err != nil:
		result.Status = StatusFailed
	default:
		result.Status = pageStatus(len(result.Failures), r != nil && r.strict)
		if result.Status == StatusFailed {
			err = foundationerrors.RenderError(fmt.Sprintf("%d page(s) failed", len(result.Failures))).
				WithContext("failures", len(result.Failures)).
				WithCause(errors.Join(failureErrors(result.Failures)...)).
				Build()
		}
	}
	result.EndTime = s.now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	if r != nil {
		s.notify(ctx, r, result)
	}

	s.recorder.IncBuildOutcome(outcomeLabel(result.Status))
	s.recorder.ObserveBuildDuration(result.Duration)
	if r != nil && r.cfg.Metrics.Textfile != "" {
		s.writeTextfile(ctx, r.cfg.Metrics.Textfile)
	}

	attrs := []slog.Attr{
		slog.String("status", string(result.Status)),
		logfields.Count(len(result.Pages)),
		slog.Int("failures", len(result.Failures)),
		slog.Int("broken_links", len(result.BrokenLinks)),
		logfields.DurationMS(float64(result.Duration.Microseconds()) / 1000),
	}
	switch result.Status {
	case StatusSuccess:
		observability.InfoContext(ctx, "Generation completed successfully", attrs...)
	case StatusPartial:
		for _, f := range result.Failures {
			observability.WarnContext(ctx, "Page failed", logfields.Root(f.Root), logfields.Page(f.Path), logfields.Error(f.Err))
		}
		observability.WarnContext(ctx, "Generation completed with failures", attrs...)
	default:
		observability.ErrorContext(ctx, "Generation did not complete", append(attrs, logfields.Error(err))...)
	}
	return result, err
}

func (s *DefaultService) notify(ctx context.Context, r *run, result *Result) {
	_ = s.runStage(context.WithoutCancel(ctx), stage{StageNotify, func(ctx context.Context) (metrics.ResultLabel, error) {
		if _, ok := s.publisher.(notify.Noop); ok {
			return metrics.ResultSkipped, nil
		}
		event := notify.BuildEvent{
			BuildID:     result.BuildID,
			Status:      string(result.Status),
			Destination: result.OutputDir,
			Roots:       result.Roots,
			Pages:       len(result.Pages),
			Skipped:     result.Skipped,
			Failures:    len(result.Failures),
			BrokenLinks: len(result.BrokenLinks),
			Revision:    result.Revision.Commit,
			Branch:      result.Revision.Branch,
			DurationMS:  result.Duration.Milliseconds(),
			Timestamp:   result.EndTime.UTC(),
		}
		pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := s.publisher.Publish(pubCtx, event); err != nil {
			observability.WarnContext(ctx, "Failed to publish build event", logfields.Error(err))
			return metrics.ResultWarning, nil
		}
		return metrics.ResultSuccess, nil
	}})
}

func (s *DefaultService) writeTextfile(ctx context.Context, path string) {
	reg, ok := s.recorder.(interface{ Registry() *prom.Registry })
	if !ok || reg.Registry() == nil {
		return
	}
	if err := metrics.WriteTextfile(path, reg.Registry()); err != nil {
		observability.WarnContext(ctx, "Failed to write metrics textfile", logfields.Path(path), logfields.Error(err))
	}
}

func (r *run) prepare(ctx context.Context) (metrics.ResultLabel, error) {
	cfg := r.cfg
	for _, dir := range []string{cfg.Destination, r.result.OutputDir} {
		if err := fsutil.EnsureDir(dir); err != nil {
			return "", foundationerrors.FileSystemError("create output directory").WithCause(err).
				WithContext("path", dir).Fatal().Build()
		}
	}

	tpl, err := styleguide.LoadTemplate(cfg.Template)
	if err != nil {
		return "", foundationerrors.ConfigError("load template").WithCause(err).
			WithContext("template", cfg.Template).Build()
	}
	r.tpl = tpl
	observability.DebugContext(ctx, "Template loaded", slog.String("template", tpl.Origin))

	rev, err := git.Resolve(cfg.Source)
	if err != nil {
		observability.WarnContext(ctx, "Could not resolve source revision", logfields.Error(err))
	}
	r.result.Revision = rev

	if cfg.Build.Incremental {
		prev, err := manifest.Load(r.result.OutputDir)
		if err != nil {
			observability.WarnContext(ctx, "Ignoring unreadable build manifest", logfields.Error(err))
		}
		r.previous = prev
	}
	return metrics.ResultSuccess, nil
}

func (r *run) assets(ctx context.Context) (metrics.ResultLabel, error) {
	if r.tpl.Public == nil {
		return metrics.ResultSkipped, nil
	}
	dst := filepath.Join(r.cfg.Destination, "public")
	n, err := fsutil.CopyFS(r.tpl.Public, dst)
	if err != nil {
		return "", foundationerrors.FileSystemError("copy template assets").WithCause(err).
			WithContext("path", dst).Fatal().Build()
	}
	observability.InfoContext(ctx, "Copied template assets", logfields.Path(dst), logfields.Count(n))
	return metrics.ResultSuccess, nil
}

func (r *run) stylesheet(ctx context.Context) (metrics.ResultLabel, error) {
	entry := r.cfg.Stylesheet.Entry
	if entry == "" {
		candidate := filepath.Join(r.cfg.Destination, "public", "kss.less")
		if !fsutil.Exists(candidate) {
			observability.DebugContext(ctx, "No stylesheet entry, skipping")
			return metrics.ResultSkipped, nil
		}
		entry = candidate
	}

	out, err := stylesheet.Compile(entry, stylesheet.Options{
		Minify:       r.cfg.Stylesheet.MinifyEnabled(),
		IncludePaths: []string{r.cfg.Source},
	})
	if err != nil {
		return "", foundationerrors.StylesheetError("compile stylesheet").WithCause(err).
			WithContext("entry", entry).Build()
	}
	target := filepath.Join(r.cfg.Destination, r.cfg.Stylesheet.Output)
	if err := fsutil.WriteFileAtomic(target, out.CSS, 0o644); err != nil {
		return "", foundationerrors.FileSystemError("write stylesheet").WithCause(err).
			WithContext("path", target).Fatal().Build()
	}
	r.result.Stylesheet = target
	observability.InfoContext(ctx, "Compiled stylesheet",
		logfields.File(entry), logfields.Path(target), logfields.Count(len(out.Sources)))
	return metrics.ResultSuccess, nil
}

func (s *DefaultService) parseStage(r *run) func(context.Context) (metrics.ResultLabel, error) {
	return func(ctx context.Context) (metrics.ResultLabel, error) {
		sg, err := kss.Traverse(ctx, r.cfg.Source, ParserOptions(r.cfg))
		if err != nil {
			if isCancellation(err) {
				return "", err
			}
			return "", foundationerrors.ParseError("parse styleguide").WithCause(err).
				WithContext("source", r.cfg.Source).Build()
		}
		r.sg = sg
		r.result.Sections = sg.Len()
		r.result.Files = sg.Files()
		r.result.Warnings = sg.Warnings()
		s.recorder.SetSections(sg.Len())

		for _, f := range r.result.Files {
			observability.DebugContext(ctx, "Parsed source file", logfields.File(f))
		}
		for _, w := range r.result.Warnings {
			observability.WarnContext(ctx, "Documentation comment skipped",
				logfields.File(w.File), slog.Int("line", w.Line), slog.String("reason", w.Message))
		}
		observability.InfoContext(ctx, "Parsed styleguide",
			logfields.Count(sg.Len()), slog.Int("files", len(r.result.Files)))
		if len(r.result.Warnings) > 0 {
			return metrics.ResultWarning, nil
		}
		return metrics.ResultSuccess, nil
	}
}

func (s *DefaultService) pagesStage(r *run) func(context.Context) (metrics.ResultLabel, error) {
	return func(ctx context.Context) (metrics.ResultLabel, error) {
		var writer styleguide.PageWriter = styleguide.FileWriter{}
		if r.previous != nil {
			writer = manifest.IncrementalWriter{Previous: r.previous, Next: writer}
		}
		gen, err := styleguide.NewGenerator(r.sg, r.tpl, styleguide.Options{
			OutputDir:    r.result.OutputDir,
			Paths:        r.paths,
			Concurrency:  r.cfg.Build.Concurrency,
			OverviewPath: r.cfg.OverviewPath(),
			Argv:         r.cfg.Argv,
			Build: styleguide.BuildInfo{
				Version:  version.Version,
				Revision: r.result.Revision.Commit,
				Branch:   r.result.Revision.Branch,
			},
			Writer:   writer,
			Recorder: s.recorder,
		})
		if err != nil {
			return "", err
		}
		r.gen = gen

		report, err := gen.GenerateSections(ctx)
		r.report = report
		if report != nil {
			r.collect(report)
			s.recorder.SetRoots(len(report.Roots))
			for _, m := range report.Malformed {
				r.result.Malformed = append(r.result.Malformed, m.Reference)
			}
		}
		if err != nil {
			return "", err
		}
		if len(report.Roots) == 0 {
			observability.WarnContext(ctx, "No documented sections found", logfields.Path(r.cfg.Source))
		}
		if report.Partial() {
			return metrics.ResultWarning, nil
		}
		return metrics.ResultSuccess, nil
	}
}

func (r *run) index(ctx context.Context) (metrics.ResultLabel, error) {
	failures := len(r.report.Failures)
	pages := len(r.report.Pages)
	r.gen.AppendIndex(ctx, r.report)

	r.result.Failures = append(r.result.Failures, r.report.Failures[failures:]...)
	added := r.report.Pages[pages:]
	r.addPages(added)
	switch {
	case len(r.report.Failures) > failures:
		return metrics.ResultWarning, nil
	case len(added) == 0:
		return metrics.ResultSkipped, nil
	}
	return metrics.ResultSuccess, nil
}

func (r *run) routes(ctx context.Context) (metrics.ResultLabel, error) {
	if r.paths.Mode != styleguide.ModeRoutes {
		return metrics.ResultSkipped, nil
	}
	rc := r.cfg.Routes
	opts := router.Options{Anchor: rc.Anchor, LineFormat: rc.LineFormat}
	for _, page := range r.report.Pages {
		if page.Kind != styleguide.PageSection {
			continue
		}
		route := r.paths.Route(page.Root)
		added, err := router.Register(rc.RouterFile, route, opts)
		if err != nil {
			return "", foundationerrors.RouterError("register route").WithCause(err).
				WithContext("route", route).WithContext("router_file", rc.RouterFile).Fatal().Build()
		}
		if added {
			r.result.Routes = append(r.result.Routes, route)
			observability.InfoContext(ctx, "Registered route", logfields.Route(route))
		}
		if _, err := router.WriteStub(rc.RoutesDir, route, opts); err != nil {
			return "", foundationerrors.RouterError("write route stub").WithCause(err).
				WithContext("route", route).WithContext("routes_dir", rc.RoutesDir).Fatal().Build()
		}
	}
	return metrics.ResultSuccess, nil
}

func (r *run) linkcheck(ctx context.Context) (metrics.ResultLabel, error) {
	if r.paths.Mode != styleguide.ModeStatic || !r.cfg.Build.CheckLinksEnabled() {
		return metrics.ResultSkipped, nil
	}
	pages := make([]linkcheck.Page, 0, len(r.report.Pages))
	for _, p := range r.report.Pages {
		pages = append(pages, linkcheck.Page{Path: p.Path, Content: p.Content})
	}
	broken, err := linkcheck.Check(ctx, r.result.OutputDir, pages)
	r.result.BrokenLinks = broken
	if err != nil {
		return "", err
	}
	if len(broken) > 0 {
		return metrics.ResultWarning, nil
	}
	return metrics.ResultSuccess, nil
}

func (r *run) saveManifest(ctx context.Context) (metrics.ResultLabel, error) {
	m := &manifest.BuildManifest{
		ID:        r.result.BuildID,
		Version:   version.Version,
		Timestamp: r.result.StartTime.UTC(),
		Inputs: manifest.Inputs{
			Source:   r.cfg.Source,
			Template: r.tpl.Origin,
			Revision: r.result.Revision.Commit,
			Branch:   r.result.Revision.Branch,
			Files:    r.result.Files,
			Sections: r.result.Sections,
		},
		Pages:  manifest.PageRecords(r.report.Pages),
		Status: string(pageStatus(len(r.result.Failures), r.strict)),
	}
	if ov := r.report.Overview; ov != nil {
		if fp, err := manifest.OverviewFingerprint(ov.Meta, ov.Body); err == nil {
			m.Overview = &manifest.SourceRecord{Path: ov.Path, Fingerprint: fp}
		}
	}
	for _, f := range r.result.Failures {
		m.Failures = append(m.Failures, manifest.FailureRecord{Root: f.Root, Path: f.Path, Error: f.Err.Error()})
	}
	m.Duration = time.Since(r.result.StartTime).Milliseconds()

	if err := manifest.Save(r.result.OutputDir, m); err != nil {
		observability.WarnContext(ctx, "Failed to write build manifest", logfields.Error(err))
		return metrics.ResultWarning, nil
	}
	return metrics.ResultSuccess, nil
}

func (r *run) collect(report *styleguide.Report) {
	r.result.Roots = report.Roots
	r.result.Failures = append(r.result.Failures, report.Failures...)
	r.addPages(report.Pages)
}

func (r *run) addPages(pages []styleguide.Page) {
	for _, p := range pages {
		r.result.Pages = append(r.result.Pages, p.Path)
		if p.Written {
			r.result.Written++
		} else {
			r.result.Skipped++
		}
	}
}

func failureErrors(failures []styleguide.PageFailure) []error {
	errs := make([]error, 0, len(failures))
	for _, f := range failures {
		errs = append(errs, f)
	}
	return errs
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func outcomeLabel(s Status) metrics.BuildOutcomeLabel {
	switch s {
	case StatusSuccess:
		return metrics.BuildOutcomeSuccess
	case StatusPartial:
		return metrics.BuildOutcomePartial
	case StatusCancelled:
		return metrics.BuildOutcomeCanceled
	}
	return metrics.BuildOutcomeFailed
}
