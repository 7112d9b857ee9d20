// Package errors provides the structured error type used across the
// subprocess packages. Every failure carries a machine-readable code so
// callers can tell a malformed request apart from an operating system that
// refused to start the program.
package errors
