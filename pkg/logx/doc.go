// Package logx wraps zerolog behind a small structured-logging API.
//
// Components hold a Logger value; loggers obtained from a Service keep
// working across runtime Apply() calls, so log level and sinks can be
// swapped on config reload without re-plumbing dependencies.
package logx
