package process

// Package process tracks every external downloader process spawned by the
// app so all of them can be located and terminated during shutdown,
// independent of which job started them.
