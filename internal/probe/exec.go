package probe

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"time"
)

// execGrace is how long past its own -W timeout ping may run before it is killed.
const execGrace = 2 * time.Second

// Exec probes by running the system ping binary once.
type Exec struct {
	target  string
	timeout time.Duration
	command string
	args    []string
}

// NewExec creates a prober running "ping -c 1 -W <timeout> <target>".
func NewExec(target string, timeout time.Duration) *Exec {
	secs := int(math.Ceil(timeout.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return &Exec{
		target:  target,
		timeout: timeout,
		command: "ping",
		args:    []string{"-c", "1", "-W", strconv.Itoa(secs), target},
	}
}

// NewExecCommand creates a prober that treats a zero exit status of an
// arbitrary command as reachable.
func NewExecCommand(timeout time.Duration, command string, args ...string) *Exec {
	return &Exec{
		target:  command,
		timeout: timeout,
		command: command,
		args:    args,
	}
}

// Check runs the command with a hard deadline and discards its output.
func (e *Exec) Check(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, e.timeout+execGrace)
	defer cancel()

	started := time.Now()
	cmd := exec.CommandContext(ctx, e.command, e.args...)
	err := cmd.Run()
	if ctx.Err() != nil {
		return failed(ctx, started, fmt.Errorf("%s %s: %w", e.command, e.target, ctx.Err()))
	}
	if err != nil {
		return failed(ctx, started, fmt.Errorf("%s %s: %w", e.command, e.target, err))
	}
	return succeeded(started)
}

func (e *Exec) String() string {
	return "exec " + e.command + " " + e.target
}
