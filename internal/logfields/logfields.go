package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyRoot       = "root"
	KeyReference  = "reference"
	KeyHeader     = "header"
	KeyPage       = "page"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyRoute      = "route"
	KeyCount      = "count"
	KeyURL        = "url"
	KeySubject    = "subject"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr      { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Root(root string) slog.Attr       { return slog.String(KeyRoot, root) }
func Reference(ref string) slog.Attr   { return slog.String(KeyReference, ref) }
func Header(h string) slog.Attr        { return slog.String(KeyHeader, h) }
func Page(p string) slog.Attr          { return slog.String(KeyPage, p) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func File(f string) slog.Attr          { return slog.String(KeyFile, f) }
func Route(r string) slog.Attr         { return slog.String(KeyRoute, r) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func URL(u string) slog.Attr           { return slog.String(KeyURL, u) }
func Subject(s string) slog.Attr       { return slog.String(KeySubject, s) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
