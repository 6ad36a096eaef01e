package provision

// Package provision stages the yt-dlp executable for the current platform:
// it resolves the latest GitHub release, downloads the matching asset into
// the scratch directory, and marks it executable on POSIX systems.
