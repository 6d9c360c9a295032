// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments (development vs production)
// and integrates seamlessly with the Fiber web framework.
//
// # Context Awareness
//
// The WithRayID helper extracts the RayID (request id) from a Fiber context and attaches it
// to the log entry so all logs of an API request can be correlated. WithRun does the same
// for a reconciliation run id, which is shared by the engine, the reporters and the
// acquisition forwarders.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Encoding: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&config.LogConfig{Level: "info"})
//	log.Info("Server started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
//
//	// Inside a reconciliation run:
//	rl := logger.WithRun(log, summary.RunID)
package logger
