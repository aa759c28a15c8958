// Package logger provides a small wrapper around zap:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and configuration,
//   - convenience functions (Infof, ErrorKV, and friends).
//
// Components accept a context and log through it, so every
// goroutine carries a named, scoped logger.
package logger
