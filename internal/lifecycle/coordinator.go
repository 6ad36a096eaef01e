package lifecycle

import (
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/videodl/videodl/internal/process"
)

// Timing constants
const (
	// ReapInterval is how often exited processes are polled away
	ReapInterval = 500 * time.Millisecond

	// TerminateGrace is how long a process gets between SIGTERM and SIGKILL
	TerminateGrace = 1 * time.Second
)

// Coordinator guards the shutting-down flag and runs the shutdown sequence
// exactly once, whether triggered from the normal exit path, a signal
// handler, or both.
type Coordinator struct {
	registry   *process.Registry
	scratchDir string
	log        zerolog.Logger

	shuttingDown atomic.Bool
	shutdownOnce sync.Once

	reapStarted atomic.Bool
	reapStop    chan struct{}
	reapDone    chan struct{}
}

// NewCoordinator creates a coordinator owning the given registry and
// scratch directory. Call Start to begin the periodic reaper.
func NewCoordinator(registry *process.Registry, scratchDir string, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		registry:   registry,
		scratchDir: scratchDir,
		log:        log,
		reapStop:   make(chan struct{}),
		reapDone:   make(chan struct{}),
	}
}

// Start launches the periodic reaper that drops registry entries for
// processes that already exited.
func (c *Coordinator) Start() {
	if !c.reapStarted.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(c.reapDone)
		ticker := time.NewTicker(ReapInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.registry.Reap()
			case <-c.reapStop:
				return
			}
		}
	}()
}

// ShuttingDown reports whether shutdown has begun. Once true it never
// reverts; jobs observing it must stop reading and report non-success, and
// the queue must stop admitting.
func (c *Coordinator) ShuttingDown() bool {
	return c.shuttingDown.Load()
}

// Shutdown runs the shutdown sequence: set the flag, stop the reaper,
// terminate every tracked process (graceful, then forced), and remove the
// scratch directory. Safe to call more than once; repeated calls do
// nothing. Cleanup is best-effort: individual failures are logged and the
// remaining steps still run.
func (c *Coordinator) Shutdown() {
	c.shutdownOnce.Do(func() {
		c.shuttingDown.Store(true)
		c.log.Info().Msg("shutting down")

		close(c.reapStop)
		if c.reapStarted.Load() {
			<-c.reapDone
		}

		c.registry.TerminateAll(TerminateGrace)

		if c.scratchDir != "" {
			if err := os.RemoveAll(c.scratchDir); err != nil {
				c.log.Error().Err(err).Str("dir", c.scratchDir).Msg("failed to remove scratch directory")
			} else {
				c.log.Info().Str("dir", c.scratchDir).Msg("scratch directory removed")
			}
		}
	})
}
