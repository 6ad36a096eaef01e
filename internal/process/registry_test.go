package process

import (
	"io"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startSleeper(t *testing.T) *exec.Cmd {
	t.Helper()
	cmd := exec.Command("sleep", "60")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	require.NoError(t, cmd.Start())
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	})
	return cmd
}

func TestRegisterUnregister(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	cmd := startSleeper(t)

	r.Register(cmd.Process, "https://a")
	assert.Equal(t, 1, r.Len())

	entries := r.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, cmd.Process.Pid, entries[0].PID)
	assert.Equal(t, "https://a", entries[0].URL)

	r.Unregister(cmd.Process.Pid)
	assert.Equal(t, 0, r.Len())

	// unregistering an unknown pid is a no-op
	r.Unregister(cmd.Process.Pid)
	assert.Equal(t, 0, r.Len())
}

func TestRegisterNilHandle(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	r.Register(nil, "https://a")
	assert.Equal(t, 0, r.Len())
}

func TestReapDropsExitedProcesses(t *testing.T) {
	r := NewRegistry(zerolog.Nop())

	exited := exec.Command("true")
	require.NoError(t, exited.Start())
	pid := exited.Process.Pid
	require.NoError(t, exited.Wait())

	running := startSleeper(t)

	r.Register(exited.Process, "https://done")
	r.Register(running.Process, "https://running")
	require.Equal(t, 2, r.Len())

	r.Reap()

	assert.Equal(t, 1, r.Len())
	entries := r.Entries()
	require.Len(t, entries, 1)
	assert.NotEqual(t, pid, entries[0].PID)
}

func TestTerminateAllKillsTrackedProcesses(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	cmd := startSleeper(t)
	r.Register(cmd.Process, "https://a")

	start := time.Now()
	r.TerminateAll(time.Second)

	err := cmd.Wait()
	require.Error(t, err, "sleep should have been signaled")
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, 0, r.Len())
	assert.False(t, alive(cmd.Process.Pid))
}

func TestTerminateAllKillsSurvivingGroupMembers(t *testing.T) {
	r := NewRegistry(zerolog.Nop())

	// The leader exits immediately, leaving behind a child in its process
	// group that ignores SIGTERM and closes its copy of the pipe. Only the
	// escalation to a group SIGKILL can reclaim it.
	cmd := exec.Command("sh", "-c",
		`sh -c 'trap "" TERM; exec sleep 60' >/dev/null 2>&1 & echo $!`)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	out, err := cmd.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, cmd.Start())
	r.Register(cmd.Process, "https://a")
	t.Cleanup(func() { _ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL) })

	raw, err := io.ReadAll(out)
	require.NoError(t, err)
	childPID, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	require.NoError(t, err)
	require.NoError(t, cmd.Wait())

	require.True(t, alive(childPID), "child should outlive the leader")

	r.TerminateAll(300 * time.Millisecond)

	require.Eventually(t, func() bool { return syscall.Kill(childPID, 0) != nil },
		3*time.Second, 50*time.Millisecond, "group member must not survive shutdown")
	assert.Equal(t, 0, r.Len())
}

func TestTerminateAllOnEmptyRegistry(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	r.TerminateAll(100 * time.Millisecond)
	assert.Equal(t, 0, r.Len())
}
