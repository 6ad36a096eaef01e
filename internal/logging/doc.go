package logging

// Package logging configures the process-wide zerolog logger: console
// output, level parsing, and per-component child loggers.
