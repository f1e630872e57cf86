// Package errors provides unified error handling for fixturekit.
// It implements structured error types with machine-readable codes,
// retryable detection, and a taxonomy covering fixture resolution,
// deserialization, persistence, and migration failures.
package errors
