package runner

// Package runner executes one download job to completion: it spawns the
// provisioned yt-dlp executable, streams its merged output as log events,
// extracts the destination filename, and maps the exit status to a terminal
// outcome.
