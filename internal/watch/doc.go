// Package watch rebuilds the styleguide when its sources change.
//
// Filesystem events are debounced into rebuild requests. A single worker
// runs builds; requests that arrive while a build is running collapse into
// one follow-up build. An optional gocron job requests a full rebuild on a
// fixed interval.
package watch
