// Package build runs the styleguide pipeline.
//
// A build is a fixed sequence of stages: prepare, assets, stylesheet, parse,
// pages, index, routes, linkcheck, manifest and notify. Every stage is timed
// and counted by the metrics recorder and logs under its own stage name.
// Fatal stage errors stop the build; per-page failures are collected in the
// Result and turn the build partial instead.
package build
