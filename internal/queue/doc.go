package queue

// Package queue implements the bounded-concurrency download queue: a FIFO
// of pending URLs, an active set capped by the concurrency limit, and a
// single admission point that re-fills open slots as jobs finish.
