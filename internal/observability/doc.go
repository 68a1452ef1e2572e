// Package observability provides structured logging and Prometheus metrics
// for the school management API.
//
// Loggers are built with zap and injected as *zap.Logger. Metrics are
// registered on an explicit prometheus.Registry so tests can use a fresh
// registry per case.
package observability
