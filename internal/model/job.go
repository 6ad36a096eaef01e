package model

import "time"

// Job represents one run of the external downloader bound to one URL
type Job struct {
	URL        string
	Status     JobStatus
	Filename   string    // destination reported by the downloader, if any
	LastError  string    // last error message if any
	StartedAt  time.Time // when the job was admitted
	FinishedAt time.Time // when the job reached a terminal state
}

// Outcome is the terminal result of a single job run
type Outcome struct {
	Status   JobStatus
	Filename string // set when Status is JobStatusCompleted
	Message  string // set when Status is JobStatusError
}

// Completed builds a successful outcome carrying the result filename
func Completed(filename string) Outcome {
	return Outcome{Status: JobStatusCompleted, Filename: filename}
}

// Failed builds a failed outcome carrying the error message
func Failed(message string) Outcome {
	return Outcome{Status: JobStatusError, Message: message}
}

// Aborted builds the outcome of a job cut short by shutdown
func Aborted() Outcome {
	return Outcome{Status: JobStatusAborted, Message: "download aborted by shutdown"}
}

// Success reports whether the outcome is a completed download
func (o Outcome) Success() bool {
	return o.Status == JobStatusCompleted
}
