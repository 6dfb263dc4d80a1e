// Package log provides the structured logging abstraction used across the
// Songza command service.
//
// Components depend on the [Logger] interface only. The service binary wires
// a zerolog-backed implementation; tests and embedders that want silence use
// the no-op logger.
//
// # Usage
//
//	logger := log.NewZerologAdapter(zerolog.InfoLevel)
//	logger.Info("endpoint listening", log.String("addr", addr))
//
// Per-request loggers carry correlation fields:
//
//	runLog := logger.With(log.String("run_id", id), log.String("command", name))
//	runLog.Warn("feed rejected", log.Err(err))
package log
