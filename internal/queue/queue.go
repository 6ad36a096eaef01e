package queue

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/videodl/videodl/internal/event"
	"github.com/videodl/videodl/internal/lifecycle"
	"github.com/videodl/videodl/internal/model"
)

// MinConcurrent is the lowest accepted concurrency limit
const MinConcurrent = 1

// JobRunner executes one download job to completion and returns its
// terminal outcome. Implemented by runner.Runner.
type JobRunner interface {
	Run(url string) model.Outcome
}

// Queue holds pending URLs and bounds how many run concurrently. All
// bookkeeping (pending FIFO, active set, admission) happens inside a single
// critical section; events are emitted after the lock is released.
type Queue struct {
	runner JobRunner
	coord  *lifecycle.Coordinator
	bus    *event.Bus
	log    zerolog.Logger

	mu            sync.Mutex
	pending       []string
	active        map[string]struct{}
	maxConcurrent int
	jobs          map[string]*model.Job

	wg sync.WaitGroup
}

// NewQueue creates a download queue admitting at most maxConcurrent jobs
// at a time.
func NewQueue(runner JobRunner, coord *lifecycle.Coordinator, bus *event.Bus, maxConcurrent int, log zerolog.Logger) *Queue {
	if maxConcurrent < MinConcurrent {
		maxConcurrent = MinConcurrent
	}
	return &Queue{
		runner:        runner,
		coord:         coord,
		bus:           bus,
		log:           log,
		active:        make(map[string]struct{}),
		maxConcurrent: maxConcurrent,
		jobs:          make(map[string]*model.Job),
	}
}

// Enqueue appends URLs that are not already pending or active, preserving
// order and collapsing duplicates within the call, then admits work into
// open slots. The full input list is returned for UI acknowledgment, not
// just the accepted subset.
func (q *Queue) Enqueue(urls []string) []string {
	q.mu.Lock()
	for _, url := range urls {
		if q.knownLocked(url) {
			continue
		}
		q.pending = append(q.pending, url)
		q.jobs[url] = &model.Job{URL: url, Status: model.JobStatusPending}
	}
	enqueued := q.pendingLocked()
	started := q.admitLocked()
	admitted := q.pendingLocked()
	q.mu.Unlock()

	q.bus.QueueChanged(enqueued)
	q.launch(started)
	q.bus.QueueChanged(admitted)

	return urls
}

// ClearPending empties the pending queue without touching running jobs
func (q *Queue) ClearPending() {
	q.mu.Lock()
	q.pending = nil
	q.mu.Unlock()

	q.bus.QueueChanged([]string{})
}

// SetMaxConcurrent stores a new concurrency limit, clamped to at least
// MinConcurrent. The new limit is applied lazily at the next enqueue or
// terminal event; running jobs are never preempted.
func (q *Queue) SetMaxConcurrent(n int) {
	if n < MinConcurrent {
		n = MinConcurrent
	}
	q.mu.Lock()
	q.maxConcurrent = n
	q.mu.Unlock()
}

// MaxConcurrent returns the current concurrency limit
func (q *Queue) MaxConcurrent() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.maxConcurrent
}

// Pending returns a snapshot of the pending queue in FIFO order
func (q *Queue) Pending() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pendingLocked()
}

// ActiveCount returns the number of currently running jobs
func (q *Queue) ActiveCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.active)
}

// Job returns the bookkeeping record for a URL seen by the queue
func (q *Queue) Job(url string) (model.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.jobs[url]
	if !ok {
		return model.Job{}, false
	}
	return *job, true
}

// Jobs returns a snapshot of every job the queue has seen, terminal ones
// included.
func (q *Queue) Jobs() []model.Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	jobs := make([]model.Job, 0, len(q.jobs))
	for _, job := range q.jobs {
		jobs = append(jobs, *job)
	}
	return jobs
}

// Wait blocks until every job started so far has reached a terminal state
func (q *Queue) Wait() {
	q.wg.Wait()
}

// admitLocked is the single place jobs are started: it moves URLs from the
// pending queue into the active set while slots are open. Caller holds the
// lock; returned URLs must be launched after the lock is released.
func (q *Queue) admitLocked() []string {
	if q.coord.ShuttingDown() {
		return nil
	}

	var started []string
	for len(q.active) < q.maxConcurrent && len(q.pending) > 0 {
		url := q.pending[0]
		q.pending = q.pending[1:]
		q.active[url] = struct{}{}
		if job, ok := q.jobs[url]; ok {
			job.Status = model.JobStatusRunning
			job.StartedAt = time.Now()
		}
		started = append(started, url)
	}
	return started
}

func (q *Queue) launch(urls []string) {
	for _, url := range urls {
		q.wg.Add(1)
		go func(u string) {
			defer q.wg.Done()
			outcome := q.runner.Run(u)
			q.onJobTerminal(u, outcome)
		}(url)
	}
}

// onJobTerminal handles both success and failure: the URL leaves the
// active set, the freed slot is re-filled, and the all-done notification
// fires exactly once when the queue fully drains. Failures are never
// requeued.
func (q *Queue) onJobTerminal(url string, outcome model.Outcome) {
	q.mu.Lock()
	delete(q.active, url)
	if job, ok := q.jobs[url]; ok {
		job.Status = outcome.Status
		job.Filename = outcome.Filename
		job.LastError = outcome.Message
		job.FinishedAt = time.Now()
	}
	started := q.admitLocked()
	remaining := q.pendingLocked()
	drained := len(q.active) == 0 && len(q.pending) == 0
	q.mu.Unlock()

	q.log.Debug().Str("url", url).Str("status", outcome.Status.String()).Msg("job finished")

	q.launch(started)
	q.bus.QueueChanged(remaining)
	if drained {
		q.bus.AllDone()
	}
}

// knownLocked reports whether url is already pending or active
func (q *Queue) knownLocked(url string) bool {
	if _, ok := q.active[url]; ok {
		return true
	}
	for _, pending := range q.pending {
		if pending == url {
			return true
		}
	}
	return false
}

func (q *Queue) pendingLocked() []string {
	snapshot := make([]string, len(q.pending))
	copy(snapshot, q.pending)
	return snapshot
}
