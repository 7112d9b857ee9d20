// Package logger provides structured logging on top of zerolog.
//
// It supports console and JSON output, level configuration, and named
// component loggers carrying structured fields.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("spawner")
//	log.Info("process started", logger.Fields("pid", pid))
package logger
