// Package logging provides structured logging for HiveCouncil.
//
// This package wraps Go's log/slog to emit JSON lines tagged with the council
// session, iteration and pipeline component. Consistency anomalies and skipped
// stream records are only ever visible here, so the log is the diagnostic
// record of a session.
//
// # Thread Safety
//
// [Logger] is safe for concurrent use. Child loggers created via With* methods
// share the underlying handler and file.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/path/to/logs", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	log := logger.WithSession("S1").WithComponent("controller")
//	log.Warn("consistency anomaly", "anomaly", "iteration_regression")
package logging
