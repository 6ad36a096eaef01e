package event

// Package event defines the typed notification surface between the download
// core and the presentation layer: queue snapshots, per-job lifecycle and
// log events, and provisioner status. It replaces a GUI signal bus with
// explicit subscriber registration.
