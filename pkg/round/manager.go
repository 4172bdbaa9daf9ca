// Package round runs a single round of an application on the simulator and
// turns its raw output into a structured result.
package round

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/qnetlab/qne-adk/pkg/asset"
	"github.com/qnetlab/qne-adk/pkg/logging"
	"github.com/qnetlab/qne-adk/pkg/metrics"
	"github.com/qnetlab/qne-adk/pkg/result"
	"github.com/qnetlab/qne-adk/pkg/simlog"
	"github.com/qnetlab/qne-adk/pkg/topology"
)

const (
	inputDirName  = "input"
	rawOutputName = "raw_output"
	// The simulator writes each run's logs into this subdirectory of the
	// log directory.
	latestRunDir = "LAST"

	// DefaultTimeout bounds one simulator run.
	DefaultTimeout = 60 * time.Second

	firstRoundNumber = 1
)

// Manager runs one round of an application. Input preparation failures and
// malformed simulator output bubble as errors; only simulator execution
// failures are folded into an error result.
type Manager struct {
	roundSet string
	asset    *asset.Asset
	path     string

	timeout time.Duration
	command []string

	log     logging.Logger
	metrics *metrics.Registry
}

// Option tweaks a Manager.
type Option func(*Manager)

// WithTimeout overrides the simulator timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(m *Manager) { m.timeout = timeout }
}

// WithSimulatorCommand overrides the simulator executable and its leading
// arguments. Used by tests to substitute a stand-in process.
func WithSimulatorCommand(command []string) Option {
	return func(m *Manager) { m.command = command }
}

// WithMetrics overrides the metrics registry the round reports into.
func WithMetrics(reg *metrics.Registry) Option {
	return func(m *Manager) { m.metrics = reg }
}

// NewManager creates a round manager for one experiment directory.
func NewManager(roundSet string, a *asset.Asset, path string, opts ...Option) *Manager {
	m := &Manager{
		roundSet: roundSet,
		asset:    a,
		path:     path,
		timeout:  DefaultTimeout,
		command:  defaultSimulatorCommand,
		log:      logging.With(logging.Component("round")),
		metrics:  metrics.DefaultRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) inputDir() string {
	return filepath.Join(m.path, inputDirName)
}

func (m *Manager) logDir() string {
	return filepath.Join(m.path, rawOutputName)
}

func (m *Manager) logFilesDir() string {
	return filepath.Join(m.logDir(), latestRunDir)
}

// Process runs one round: prepare the simulator input from the asset, run
// the simulator, and convert its output. A failed simulator run produces an
// error result rather than an error.
func (m *Manager) Process(ctx context.Context) (*result.Result, error) {
	started := time.Now()
	m.metrics.RoundsRunning.Inc()
	defer m.metrics.RoundsRunning.Dec()

	timer := logging.StartTimer(m.log, "round", logging.String("path", m.path))

	mapping, err := prepareInput(m.asset, m.inputDir(), m.metrics)
	if err != nil {
		m.metrics.RecordRound("failed", time.Since(started))
		timer.EndError(err)
		return nil, fmt.Errorf("preparing round input: %w", err)
	}

	if err := os.MkdirAll(m.logDir(), 0o755); err != nil {
		m.metrics.RecordRound("failed", time.Since(started))
		timer.EndError(err)
		return nil, fmt.Errorf("preparing output directory: %w", err)
	}

	if err := runSimulator(ctx, m.command, m.inputDir(), m.logDir(), m.timeout); err != nil {
		var simErr *SimulatorError
		if errors.As(err, &simErr) {
			m.log.Error("simulator run failed",
				logging.String("exception", simErr.Kind),
				logging.String("message", simErr.Message))
			m.metrics.RecordRound("failed", time.Since(started))
			timer.End()
			return result.GenerateError(m.roundSet, firstRoundNumber, simErr.Kind, simErr.Message, simErr.Trace), nil
		}
		m.metrics.RecordRound("failed", time.Since(started))
		timer.EndError(err)
		return nil, err
	}

	res, err := m.convertOutput(mapping)
	if err != nil {
		m.metrics.RecordRound("failed", time.Since(started))
		timer.EndError(err)
		return nil, err
	}

	m.metrics.RecordRound("succeeded", time.Since(started))
	timer.End()
	return res, nil
}

// convertOutput reads the simulator's log files and assembles the round
// result: combined timeline, decoded instructions and rewritten channels.
func (m *Manager) convertOutput(mapping topology.ChannelMapping) (*result.Result, error) {
	roundResult, nodes, err := simlog.ReadRoundResult(m.logFilesDir())
	if err != nil {
		return nil, err
	}

	records, err := simlog.NewCombiner(m.logFilesDir()).Combine(nodes)
	if err != nil {
		return nil, err
	}
	m.metrics.RecordCombinedRecords(len(records))

	instructions, err := simlog.Decode(records, m.log)
	if err != nil {
		return nil, err
	}
	for _, instruction := range instructions {
		m.metrics.RecordDecodedInstruction(simlog.CommandName(instruction))
	}
	// Every record either decodes to exactly one instruction or is dropped.
	for dropped := len(records) - len(instructions); dropped > 0; dropped-- {
		m.metrics.RecordDroppedRecord()
	}

	instructions, err = simlog.RewriteChannels(instructions, mapping)
	if err != nil {
		return nil, err
	}

	return result.Generate(m.roundSet, firstRoundNumber, roundResult, instructions, nil), nil
}

// Clean removes everything a run creates under the experiment directory.
func (m *Manager) Clean() error {
	for _, dir := range []string{m.inputDir(), m.logDir()} {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("cleaning %s: %w", dir, err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("recreating %s: %w", dir, err)
		}
	}
	return nil
}
