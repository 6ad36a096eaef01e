package process

import (
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// Polling interval used while waiting out the termination grace period
const killPollInterval = 50 * time.Millisecond

// Entry tracks one running downloader process
type Entry struct {
	PID       int
	PGID      int
	Handle    *os.Process
	URL       string
	StartedAt time.Time
}

// Registry is a thread-safe table of in-flight downloader processes keyed
// by PID. Entries are added at spawn and removed once the process is
// confirmed exited or after a forced kill.
type Registry struct {
	mu      sync.Mutex
	entries map[int]*Entry
	log     zerolog.Logger
}

// NewRegistry creates an empty process registry
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		entries: make(map[int]*Entry),
		log:     log,
	}
}

// Register records a newly spawned process
func (r *Registry) Register(handle *os.Process, url string) {
	if handle == nil {
		return
	}

	// The group id is captured now, while the leader is certainly alive;
	// it stays valid for signaling surviving children after the leader dies.
	pgid, err := syscall.Getpgid(handle.Pid)
	if err != nil {
		pgid = handle.Pid
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[handle.Pid] = &Entry{
		PID:       handle.Pid,
		PGID:      pgid,
		Handle:    handle,
		URL:       url,
		StartedAt: time.Now(),
	}
	r.log.Debug().Int("pid", handle.Pid).Str("url", url).Msg("registered downloader process")
}

// Unregister removes a process from the registry
func (r *Registry) Unregister(pid int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[pid]; ok {
		delete(r.entries, pid)
		r.log.Debug().Int("pid", pid).Msg("unregistered downloader process")
	}
}

// Len returns the number of tracked processes
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Entries returns a snapshot of all tracked processes
func (r *Registry) Entries() []*Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	return entries
}

// Reap drops entries whose process group has fully exited. The check is a
// non-blocking signal-0 probe, safe to run on a timer. An entry with a dead
// leader but surviving children stays tracked so shutdown still reaches them.
func (r *Registry) Reap() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for pid, entry := range r.entries {
		if !entryAlive(entry) {
			delete(r.entries, pid)
			r.log.Debug().Int("pid", pid).Msg("reaped exited downloader process")
		}
	}
}

// TerminateAll requests graceful termination of every tracked process and
// escalates to SIGKILL after the grace period, covering child processes via
// the process group. Failures are logged and do not stop the sweep.
func (r *Registry) TerminateAll(grace time.Duration) {
	for _, entry := range r.Entries() {
		r.terminate(entry, grace)
		r.Unregister(entry.PID)
	}
}

func (r *Registry) terminate(entry *Entry, grace time.Duration) {
	if !entryAlive(entry) {
		return
	}

	r.log.Info().Int("pid", entry.PID).Str("url", entry.URL).Msg("terminating downloader process")
	if err := signalGroup(entry.PID, entry.PGID, syscall.SIGTERM); err != nil && err != syscall.ESRCH {
		r.log.Warn().Int("pid", entry.PID).Err(err).Msg("SIGTERM failed")
	}

	deadline := time.Now().Add(grace)
	for time.Now().Before(deadline) {
		if !entryAlive(entry) {
			return
		}
		time.Sleep(killPollInterval)
	}

	r.log.Warn().Int("pid", entry.PID).Msg("grace period expired, sending SIGKILL")
	if err := signalGroup(entry.PID, entry.PGID, syscall.SIGKILL); err != nil && err != syscall.ESRCH {
		r.log.Error().Int("pid", entry.PID).Err(err).Msg("SIGKILL failed")
	}
}

// KillGroup force-kills pid's whole process group when pid leads one, or
// pid alone otherwise. Used by jobs aborting their own process on shutdown.
func KillGroup(pid int) error {
	pgid, err := syscall.Getpgid(pid)
	if err != nil {
		pgid = pid
	}
	return signalGroup(pid, pgid, syscall.SIGKILL)
}

// signalGroup signals the whole process group so children spawned by the
// downloader (ffmpeg) are covered. Jobs start with Setpgid, making each one
// its own group leader; a process that is not a leader only gets the pid
// signal, since its group is shared with this process.
func signalGroup(pid, pgid int, sig syscall.Signal) error {
	if pgid == pid {
		return syscall.Kill(-pgid, sig)
	}
	return syscall.Kill(pid, sig)
}

// entryAlive probes the whole process group when the entry leads one, so a
// dead leader with surviving children still counts as running.
func entryAlive(e *Entry) bool {
	if e.PGID == e.PID {
		return syscall.Kill(-e.PGID, 0) == nil
	}
	return alive(e.PID)
}

// alive probes a pid without blocking or reaping it
func alive(pid int) bool {
	return syscall.Kill(pid, 0) == nil
}
