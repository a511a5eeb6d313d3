/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: external.go
Description: External oracle adapter for the Arvada grammar miner. Invokes a
user-supplied validity checker as a subprocess with the candidate string in a
temporary file. Exit code 0 means the string belongs to the target language;
crashes, nonzero exits, and timeouts are all classified as rejections so a flaky
oracle can never halt the search.
*/

package oracle

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/rifatarefin/arvada/pkg/interfaces"
	"github.com/sirupsen/logrus"
)

// ExternalOracle runs an external command as the validity predicate.
// The command is invoked as "<command> [args...] <file>" where file
// holds the exact candidate string.
type ExternalOracle struct {
	command string
	args    []string
	timeout time.Duration
	logger  *logrus.Logger

	mu    sync.Mutex
	stats interfaces.OracleStats
}

// NewExternalOracle creates an oracle around the given command.
// A non-positive timeout falls back to 3 seconds, the conventional
// budget for external validity checkers.
func NewExternalOracle(command string, args []string, timeout time.Duration, logger *logrus.Logger) *ExternalOracle {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &ExternalOracle{
		command: command,
		args:    args,
		timeout: timeout,
		logger:  logger,
	}
}

// IsValid submits one candidate string to the external checker.
// Environmental failures (missing binary, unkillable process, temp file
// trouble) are reported as ErrOracleUnavailable with a false verdict;
// the caller treats that as a rejection, never as a fatal error.
func (o *ExternalOracle) IsValid(ctx context.Context, input string) (bool, error) {
	o.mu.Lock()
	o.stats.Calls++
	o.stats.RealCalls++
	o.mu.Unlock()

	start := time.Now()
	valid, err := o.run(ctx, input)
	elapsed := time.Since(start)

	o.mu.Lock()
	o.stats.TimeSpent += elapsed
	if err != nil {
		o.stats.Failures++
	} else if valid {
		o.stats.Accepted++
	} else {
		o.stats.Rejected++
	}
	o.mu.Unlock()

	return valid, err
}

func (o *ExternalOracle) run(ctx context.Context, input string) (bool, error) {
	tmpfile, err := os.CreateTemp("", "arvada-probe")
	if err != nil {
		return false, fmt.Errorf("%w: %v", interfaces.ErrOracleUnavailable, err)
	}
	defer os.Remove(tmpfile.Name())
	if _, err := tmpfile.WriteString(input); err != nil {
		tmpfile.Close()
		return false, fmt.Errorf("%w: %v", interfaces.ErrOracleUnavailable, err)
	}
	tmpfile.Close()

	runCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	args := append(append([]string(nil), o.args...), tmpfile.Name())
	cmd := exec.CommandContext(runCtx, o.command, args...)

	err = cmd.Run()
	if err == nil {
		return true, nil
	}

	// Timeout and nonzero exit are both plain rejections
	if runCtx.Err() == context.DeadlineExceeded {
		o.logger.WithField("len", len(input)).Debug("Oracle timed out, treating as invalid")
		return false, nil
	}
	if _, ok := err.(*exec.ExitError); ok {
		return false, nil
	}

	// The process could not be started at all
	o.logger.WithError(err).Warn("Oracle invocation failed")
	return false, fmt.Errorf("%w: %v", interfaces.ErrOracleUnavailable, err)
}

// Stats returns cumulative invocation counters
func (o *ExternalOracle) Stats() interfaces.OracleStats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stats
}
