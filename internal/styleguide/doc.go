// Package styleguide groups parsed sections by their root token and emits one
// page per root plus an overview page.
//
// Grouping is pure (CollectRoots, ChildrenOf); emission goes through a
// Generator built per styleguide snapshot:
//
//	gen, err := styleguide.NewGenerator(sg, tpl, styleguide.Options{OutputDir: "styleguide"})
//	report, err := gen.Generate(ctx)
//	for _, f := range report.Failures { ... }
//
// Pages for different roots are rendered concurrently; each writes a distinct
// file and reads only the immutable snapshot.
package styleguide
