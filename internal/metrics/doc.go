// Package metrics provides build metrics for kssbuilder.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics never need nil checks at call sites:
//
//	svc := build.NewService().WithRecorder(metrics.NewPrometheusRecorder(reg))
//
// A styleguide build is a one-shot batch job with no HTTP surface to scrape, so
// the Prometheus registry is exported through the node-exporter textfile
// collector format (see WriteTextfile) at the end of each build.
package metrics
