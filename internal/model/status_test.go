package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobStatusString(t *testing.T) {
	assert.Equal(t, "Pending", JobStatusPending.String())
	assert.Equal(t, "Running", JobStatusRunning.String())
	assert.Equal(t, "Completed", JobStatusCompleted.String())
	assert.Equal(t, "Error", JobStatusError.String())
	assert.Equal(t, "Aborted", JobStatusAborted.String())
}

func TestJobStatusIsTerminal(t *testing.T) {
	assert.False(t, JobStatusPending.IsTerminal())
	assert.False(t, JobStatusRunning.IsTerminal())
	assert.True(t, JobStatusCompleted.IsTerminal())
	assert.True(t, JobStatusError.IsTerminal())
	assert.True(t, JobStatusAborted.IsTerminal())
}

func TestOutcomeConstructors(t *testing.T) {
	ok := Completed("video.mp4")
	assert.True(t, ok.Success())
	assert.Equal(t, JobStatusCompleted, ok.Status)
	assert.Equal(t, "video.mp4", ok.Filename)

	failed := Failed("boom")
	assert.False(t, failed.Success())
	assert.Equal(t, JobStatusError, failed.Status)
	assert.Equal(t, "boom", failed.Message)

	aborted := Aborted()
	assert.False(t, aborted.Success())
	assert.Equal(t, JobStatusAborted, aborted.Status)
	assert.NotEmpty(t, aborted.Message)
}
