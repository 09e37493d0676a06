package kss

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Traverse parses every stylesheet below dir whose extension is listed in
// opts.Extensions. Files are visited in lexical order; hidden directories and
// node_modules are skipped.
func Traverse(ctx context.Context, dir string, opts Options) (*Styleguide, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %s is not a directory", dir)
	}
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	var (
		sections []*Section
		warnings []Warning
		files    []string
	)
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && (strings.HasPrefix(d.Name(), ".") || d.Name() == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		if !slices.Contains(exts, strings.ToLower(filepath.Ext(path))) {
			return nil
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)
		found, warns, err := Parse(src, rel, opts)
		if err != nil {
			return err
		}
		files = append(files, rel)
		sections = append(sections, found...)
		warnings = append(warnings, warns...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewStyleguide(sections, files, warnings), nil
}
