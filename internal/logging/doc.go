// Package logging provides structured logging for pcsplit runs.
//
// It wraps log/slog with a JSON handler and lets callers attach persistent
// attributes so that every line written during a step can be filtered
// afterwards with ordinary JSON tooling.
//
// # Usage
//
//	logger, err := logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level)
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	stepLog := logger.WithStep("partition-pc").WithStrategy("smart")
//	stepLog.Info("trial finished", "trial", 17, "score", 42)
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"trial finished","step":"partition-pc","strategy":"smart","trial":17,"score":42}
//
// Library packages accept a *Logger and fall back to [NopLogger] when given
// nil, so tests never need a log directory.
package logging
