package lifecycle

// Package lifecycle owns shutdown sequencing: the irreversible shutting-down
// flag, the periodic process reaper, termination of tracked processes, and
// removal of the scratch directory.
