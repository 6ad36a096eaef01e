package model

// JobStatus represents the status of a download job
type JobStatus string

const (
	// JobStatusPending means the job is queued but not admitted
	JobStatusPending JobStatus = "Pending"

	// JobStatusRunning means the downloader process is running
	JobStatusRunning JobStatus = "Running"

	// JobStatusCompleted means the job finished successfully
	JobStatusCompleted JobStatus = "Completed"

	// JobStatusError means the job failed with an error
	JobStatusError JobStatus = "Error"

	// JobStatusAborted means the job was cut short by shutdown
	JobStatusAborted JobStatus = "Aborted"
)

// String returns the string representation of JobStatus
func (js JobStatus) String() string {
	return string(js)
}

// IsTerminal returns true if the job reached a terminal state
func (js JobStatus) IsTerminal() bool {
	return js == JobStatusCompleted || js == JobStatusError || js == JobStatusAborted
}
