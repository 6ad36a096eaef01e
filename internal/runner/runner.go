package runner

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/videodl/videodl/internal/event"
	"github.com/videodl/videodl/internal/lifecycle"
	"github.com/videodl/videodl/internal/model"
	"github.com/videodl/videodl/internal/process"
)

// FormatSelector prefers combined mp4 video+audio and falls back to the
// best available streams.
const FormatSelector = "bv*[ext=mp4]+ba[ext=m4a]/b[ext=mp4] / bv*+ba/b"

// DestinationMarker is the yt-dlp output line prefix carrying the result
// file path.
const DestinationMarker = "[download] Destination:"

// FallbackFilename is reported when a download succeeds without ever
// printing a destination line.
const FallbackFilename = "File downloaded"

// User-facing error messages
const (
	MsgNoOutputDir   = "No output directory has been selected"
	MsgNotAvailable  = "yt-dlp is not available"
	MsgDownloadError = "Download error. Check the logs for more details."
)

// Executable locates the provisioned downloader binary
type Executable interface {
	IsAvailable() bool
	Path() string
}

// Runner executes download jobs against the shared executable and output
// directory configuration.
type Runner struct {
	executable Executable
	registry   *process.Registry
	coord      *lifecycle.Coordinator
	bus        *event.Bus
	log        zerolog.Logger

	mu        sync.RWMutex
	outputDir string
}

// NewRunner creates a job runner
func NewRunner(executable Executable, registry *process.Registry, coord *lifecycle.Coordinator, bus *event.Bus, log zerolog.Logger) *Runner {
	return &Runner{
		executable: executable,
		registry:   registry,
		coord:      coord,
		bus:        bus,
		log:        log,
	}
}

// SetOutputDir updates the download directory read by subsequent jobs.
// A no-op once shutdown began.
func (r *Runner) SetOutputDir(dir string) {
	if r.coord.ShuttingDown() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outputDir = dir
}

// OutputDir returns the currently configured download directory
func (r *Runner) OutputDir() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.outputDir
}

// Run executes one download job to completion and returns its terminal
// outcome. It emits started, log, and exactly one completed/error event
// for the URL.
func (r *Runner) Run(url string) model.Outcome {
	// The UI is notified optimistically, before precondition checks
	r.bus.JobStarted(url)

	outputDir := r.OutputDir()
	if outputDir == "" {
		return r.fail(url, MsgNoOutputDir)
	}
	if !r.executable.IsAvailable() {
		return r.fail(url, MsgNotAvailable)
	}

	// A fresh token per run keeps concurrent or repeated downloads of the
	// same title from colliding on the output path.
	token := uuid.NewString()
	outputTemplate := filepath.Join(outputDir, fmt.Sprintf("%%(title)s-%s.%%(ext)s", token))

	// Arguments are passed as a literal list, never through a shell
	cmd := exec.Command(r.executable.Path(),
		"-f", FormatSelector,
		"-o", outputTemplate,
		url,
	)
	// Own process group so termination reaches yt-dlp's children (ffmpeg)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return r.fail(url, err.Error())
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return r.fail(url, err.Error())
	}

	pid := cmd.Process.Pid
	r.registry.Register(cmd.Process, url)
	defer r.registry.Unregister(pid)
	r.log.Debug().Int("pid", pid).Str("url", url).Msg("downloader spawned")

	reader := bufio.NewReader(stdout)

	var destination string
	for {
		if r.coord.ShuttingDown() {
			_ = process.KillGroup(pid)
			_ = cmd.Wait()
			outcome := model.Aborted()
			r.bus.JobError(url, outcome.Message)
			return outcome
		}

		line, readErr := readLine(reader)
		line = strings.TrimSpace(line)
		if line != "" {
			r.bus.JobLog(url, line)

			// Last destination line wins when yt-dlp prints several
			if idx := strings.Index(line, DestinationMarker); idx >= 0 {
				destination = strings.TrimSpace(line[idx+len(DestinationMarker):])
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			_ = process.KillGroup(pid)
			_ = cmd.Wait()
			return r.fail(url, readErr.Error())
		}
	}

	if waitErr := cmd.Wait(); waitErr != nil {
		if _, ok := waitErr.(*exec.ExitError); ok {
			return r.fail(url, MsgDownloadError)
		}
		return r.fail(url, waitErr.Error())
	}

	if destination == "" {
		destination = FallbackFilename
	}
	r.bus.JobCompleted(url, destination)
	return model.Completed(destination)
}

func (r *Runner) fail(url, message string) model.Outcome {
	r.bus.JobError(url, message)
	return model.Failed(message)
}

// readLine consumes the stream up to the next newline or carriage return.
// yt-dlp rewrites its progress line in place with carriage returns, so both
// bytes terminate a line; line length is not bounded.
func readLine(r *bufio.Reader) (string, error) {
	var line strings.Builder
	for {
		b, err := r.ReadByte()
		if err != nil {
			return line.String(), err
		}
		if b == '\n' || b == '\r' {
			return line.String(), nil
		}
		line.WriteByte(b)
	}
}
