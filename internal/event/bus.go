package event

import (
	"sync"
)

// SystemSource tags log and error events that are not attached to a
// specific URL (provisioning, cleanup).
const SystemSource = "System"

// Provisioner states reported while the downloader executable is staged
const (
	ProvisionStarting    = "starting"
	ProvisionDownloading = "downloading"
	ProvisionReady       = "ready"
	ProvisionError       = "error"
)

// Subscriber receives queue and job lifecycle notifications. Callbacks are
// invoked synchronously from queue and runner goroutines, never while the
// queue lock is held, so a subscriber may call back into the queue.
type Subscriber interface {
	QueueChanged(pending []string)
	JobStarted(url string)
	JobLog(url, line string)
	JobCompleted(url, filename string)
	JobError(url, message string)
	AllDone()
	ProvisionerStatus(state string)
}

// Funcs adapts plain functions to the Subscriber interface. Nil fields are
// ignored, so a subscriber only implements the events it cares about.
type Funcs struct {
	OnQueueChanged      func(pending []string)
	OnJobStarted        func(url string)
	OnJobLog            func(url, line string)
	OnJobCompleted      func(url, filename string)
	OnJobError          func(url, message string)
	OnAllDone           func()
	OnProvisionerStatus func(state string)
}

// QueueChanged implements Subscriber
func (f *Funcs) QueueChanged(pending []string) {
	if f.OnQueueChanged != nil {
		f.OnQueueChanged(pending)
	}
}

// JobStarted implements Subscriber
func (f *Funcs) JobStarted(url string) {
	if f.OnJobStarted != nil {
		f.OnJobStarted(url)
	}
}

// JobLog implements Subscriber
func (f *Funcs) JobLog(url, line string) {
	if f.OnJobLog != nil {
		f.OnJobLog(url, line)
	}
}

// JobCompleted implements Subscriber
func (f *Funcs) JobCompleted(url, filename string) {
	if f.OnJobCompleted != nil {
		f.OnJobCompleted(url, filename)
	}
}

// JobError implements Subscriber
func (f *Funcs) JobError(url, message string) {
	if f.OnJobError != nil {
		f.OnJobError(url, message)
	}
}

// AllDone implements Subscriber
func (f *Funcs) AllDone() {
	if f.OnAllDone != nil {
		f.OnAllDone()
	}
}

// ProvisionerStatus implements Subscriber
func (f *Funcs) ProvisionerStatus(state string) {
	if f.OnProvisionerStatus != nil {
		f.OnProvisionerStatus(state)
	}
}

// Bus fans events out to registered subscribers in registration order.
type Bus struct {
	mu   sync.RWMutex
	subs []Subscriber
}

// NewBus creates an empty event bus
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a subscriber for all subsequent events
func (b *Bus) Subscribe(s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, s)
}

func (b *Bus) each(fn func(Subscriber)) {
	b.mu.RLock()
	subs := make([]Subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		fn(s)
	}
}

// QueueChanged publishes the current pending queue contents
func (b *Bus) QueueChanged(pending []string) {
	b.each(func(s Subscriber) { s.QueueChanged(pending) })
}

// JobStarted publishes that a job began for url
func (b *Bus) JobStarted(url string) {
	b.each(func(s Subscriber) { s.JobStarted(url) })
}

// JobLog publishes one output line for url
func (b *Bus) JobLog(url, line string) {
	b.each(func(s Subscriber) { s.JobLog(url, line) })
}

// JobCompleted publishes a successful terminal event for url
func (b *Bus) JobCompleted(url, filename string) {
	b.each(func(s Subscriber) { s.JobCompleted(url, filename) })
}

// JobError publishes a failed terminal event for url
func (b *Bus) JobError(url, message string) {
	b.each(func(s Subscriber) { s.JobError(url, message) })
}

// AllDone publishes that both the pending queue and the active set drained
func (b *Bus) AllDone() {
	b.each(func(s Subscriber) { s.AllDone() })
}

// ProvisionerStatus publishes the downloader staging state
func (b *Bus) ProvisionerStatus(state string) {
	b.each(func(s Subscriber) { s.ProvisionerStatus(state) })
}
