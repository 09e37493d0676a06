package linkcheck

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/kssbuilder/internal/logfields"
	"git.home.luguber.info/inful/kssbuilder/internal/observability"
)

// BrokenLink is an internal link whose target is missing.
type BrokenLink struct {
	Page   string `json:"page"`
	URL    string `json:"url"`
	Tag    string `json:"tag"`
	Target string `json:"target"` // resolved path relative to the destination
}

func (b BrokenLink) String() string {
	return fmt.Sprintf("%s: <%s> %s -> %s (missing)", b.Page, b.Tag, b.URL, b.Target)
}

// Page is an emitted page to check. Path is relative to the destination.
type Page struct {
	Path    string
	Content []byte
}

// Check resolves every internal link of pages against dir. Absolute paths
// are resolved from dir itself. Directory targets count as present when
// they hold an index.html.
func Check(ctx context.Context, dir string, pages []Page) ([]BrokenLink, error) {
	var broken []BrokenLink
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return broken, err
		}
		links, err := ExtractLinks(bytes.NewReader(p.Content))
		if err != nil {
			observability.WarnContext(ctx, "Skipping unparsable page", logfields.Page(p.Path), logfields.Error(err))
			continue
		}
		pageDir := path.Dir(filepath.ToSlash(p.Path))
		seen := map[string]bool{}
		for _, l := range links {
			target, ok := localTarget(l.URL)
			if !ok {
				continue
			}
			if strings.HasPrefix(target, "/") {
				target = path.Clean(strings.TrimPrefix(target, "/"))
			} else {
				target = path.Join(pageDir, target)
			}
			if seen[target] {
				continue
			}
			seen[target] = true
			if exists(dir, target) {
				continue
			}
			b := BrokenLink{Page: p.Path, URL: l.URL, Tag: l.Tag, Target: target}
			observability.WarnContext(ctx, "Broken internal link",
				logfields.Page(p.Path), logfields.URL(l.URL), logfields.Path(target))
			broken = append(broken, b)
		}
	}
	return broken, nil
}

func exists(dir, target string) bool {
	if target == ".." || strings.HasPrefix(target, "../") {
		return false
	}
	full := filepath.Join(dir, filepath.FromSlash(target))
	info, err := os.Stat(full)
	if err != nil {
		return false
	}
	if info.IsDir() {
		_, err = os.Stat(filepath.Join(full, "index.html"))
		return err == nil
	}
	return true
}
