package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus()

	var first, second []string
	bus.Subscribe(&Funcs{
		OnJobStarted: func(url string) { first = append(first, url) },
	})
	bus.Subscribe(&Funcs{
		OnJobStarted: func(url string) { second = append(second, url) },
	})

	bus.JobStarted("https://a")
	bus.JobStarted("https://b")

	assert.Equal(t, []string{"https://a", "https://b"}, first)
	assert.Equal(t, []string{"https://a", "https://b"}, second)
}

func TestBusWithoutSubscribers(t *testing.T) {
	bus := NewBus()

	// no subscribers registered; nothing should panic
	bus.QueueChanged([]string{"https://a"})
	bus.JobStarted("https://a")
	bus.JobLog("https://a", "line")
	bus.JobCompleted("https://a", "file.mp4")
	bus.JobError("https://a", "boom")
	bus.AllDone()
	bus.ProvisionerStatus(ProvisionReady)
}

func TestFuncsIgnoresNilCallbacks(t *testing.T) {
	bus := NewBus()

	var completed string
	bus.Subscribe(&Funcs{
		OnJobCompleted: func(url, filename string) { completed = filename },
	})

	// events without a registered callback are dropped silently
	bus.JobStarted("https://a")
	bus.JobLog("https://a", "line")
	bus.AllDone()

	bus.JobCompleted("https://a", "video.mp4")
	assert.Equal(t, "video.mp4", completed)
}

func TestBusCarriesEventPayloads(t *testing.T) {
	bus := NewBus()

	var pending []string
	var errURL, errMsg string
	bus.Subscribe(&Funcs{
		OnQueueChanged: func(p []string) { pending = p },
		OnJobError:     func(url, message string) { errURL, errMsg = url, message },
	})

	bus.QueueChanged([]string{"https://a", "https://b"})
	bus.JobError("https://c", "Download error. Check the logs for more details.")

	assert.Equal(t, []string{"https://a", "https://b"}, pending)
	assert.Equal(t, "https://c", errURL)
	assert.Equal(t, "Download error. Check the logs for more details.", errMsg)
}
