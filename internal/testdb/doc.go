// Package testdb provides utilities for tests that run against a real
// PostgreSQL database. Tests using it skip themselves when no database URL is
// configured, so they are safe to compile into every test binary.
package testdb
