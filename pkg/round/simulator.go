package round

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Exception kinds reported in error results. The values match what result
// consumers historically expect for each failure mode.
const (
	ExceptionProcessError = "CalledProcessError"
	ExceptionTimeout      = "TimeoutExpired"
)

// SimulatorError describes a failed simulator run. It carries the exception
// kind, a human readable message and the captured stderr trace.
type SimulatorError struct {
	Kind    string
	Message string
	Trace   string
}

func (e *SimulatorError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// defaultSimulatorCommand invokes the simulator on a prepared application
// directory. The input and log directories are appended at run time.
var defaultSimulatorCommand = []string{"netqasm", "simulate"}

// runSimulator executes the simulator subprocess with the given timeout.
// Stdout is discarded; stderr is kept for the failure trace. All failure
// modes are reported as a SimulatorError.
func runSimulator(ctx context.Context, command []string, inputDir, logDir string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(append([]string{}, command[1:]...), "--app-dir", inputDir, "--log-dir", logDir)
	cmd := exec.CommandContext(ctx, command[0], args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	if ctx.Err() == context.DeadlineExceeded {
		return &SimulatorError{
			Kind:    ExceptionTimeout,
			Message: fmt.Sprintf("Call to simulator timed out after %g seconds.", timeout.Seconds()),
			Trace:   stderr.String(),
		}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &SimulatorError{
			Kind:    ExceptionProcessError,
			Message: fmt.Sprintf("NetQASM returned with exit status %d.", exitErr.ExitCode()),
			Trace:   stderr.String(),
		}
	}

	return &SimulatorError{
		Kind:    fmt.Sprintf("%T", err),
		Message: err.Error(),
		Trace:   stderr.String(),
	}
}
