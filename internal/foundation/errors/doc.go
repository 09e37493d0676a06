// Package errors provides the classified error primitives used across kssbuilder.
//
// Every fatal failure of a styleguide build (bad configuration, a stylesheet that
// does not compile, a source tree that cannot be parsed, an unwritable destination)
// surfaces as a *ClassifiedError so the CLI can pick an exit code and a message
// without string matching.
//
//	err := errors.NewError(errors.CategoryStylesheet, "compile stylesheet").
//		WithContext("entry", entry).
//		WithCause(cause).
//		Build()
//
// Per-page render failures are not errors of the build itself; they are collected
// as values in the build result and only become a ClassifiedError when the caller
// asks for strict behavior.
package errors
