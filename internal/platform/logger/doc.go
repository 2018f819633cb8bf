// Package logger provides structured logging functionality for the application
// using Go's standard library log/slog package. Loggers travel through request
// contexts so that request-scoped attributes such as trace IDs are attached to
// every line written while serving that request.
package logger
