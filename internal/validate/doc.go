package validate

// Package validate checks and normalizes user-supplied download URLs before
// they reach the queue. Only absolute http/https URLs pass.
