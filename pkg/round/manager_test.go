package round

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/qnetlab/qne-adk/pkg/asset"
	"github.com/qnetlab/qne-adk/pkg/metrics"
	"github.com/qnetlab/qne-adk/pkg/result"
	"github.com/qnetlab/qne-adk/pkg/simlog"
	"github.com/qnetlab/qne-adk/pkg/topology"
)

func testAsset() *asset.Asset {
	return &asset.Asset{
		Network: asset.Network{
			Slug: "randstad",
			Roles: map[string]string{
				"Sender":   "amsterdam",
				"Receiver": "leiden",
			},
			Nodes: []asset.Node{
				{Slug: "amsterdam"},
				{Slug: "leiden"},
			},
			Channels: []asset.Channel{
				{
					Node1: "amsterdam",
					Node2: "leiden",
					Parameters: []asset.Template{
						{Values: []asset.TemplateValue{{Name: "fidelity", Value: 0.9}}},
					},
				},
			},
		},
		Application: []asset.Template{
			{Roles: []string{"sender"}, Values: []asset.TemplateValue{{Name: "phi", Value: 0.5}}},
		},
	}
}

// writeSimulatorOutput fakes the files the simulator leaves behind in the
// LAST run directory.
func writeSimulatorOutput(t *testing.T, experimentPath string) {
	t.Helper()
	dir := filepath.Join(experimentPath, "raw_output", "LAST")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	results := "- app_sender:\n    phi: 0.5\n  app_receiver:\n    outcome: 1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "results.yaml"), []byte(results), 0o644))

	networkLog := `- INS: epr_EntanglementStage.START
  WCT: 1.0
  NOD: [amsterdam, leiden]
  QID: [0, 0]
  PTH: [amsterdam-leiden]
  QGR:
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "network_log.yaml"), []byte(networkLog), 0o644))
}

// TestPrepareInput_WritesSimulatorFiles checks the reduced network, role
// placement and per role inputs land in the input directory.
func TestPrepareInput_WritesSimulatorFiles(t *testing.T) {
	dir := t.TempDir()

	mapping, err := prepareInput(testAsset(), dir, metrics.NewRegistry())
	require.NoError(t, err)
	assert.Equal(t, topology.ChannelMapping{
		"amsterdam-leiden": {"amsterdam-leiden"},
	}, mapping)

	data, err := os.ReadFile(filepath.Join(dir, "network.yaml"))
	require.NoError(t, err)
	var network topology.Network
	require.NoError(t, yaml.Unmarshal(data, &network))
	require.Len(t, network.Links, 1)
	assert.Equal(t, 0.9, network.Links[0].Fidelity)

	data, err = os.ReadFile(filepath.Join(dir, "roles.yaml"))
	require.NoError(t, err)
	roles := map[string]string{}
	require.NoError(t, yaml.Unmarshal(data, &roles))
	assert.Equal(t, map[string]string{"sender": "amsterdam", "receiver": "leiden"}, roles)

	data, err = os.ReadFile(filepath.Join(dir, "sender.yaml"))
	require.NoError(t, err)
	inputs := map[string]any{}
	require.NoError(t, yaml.Unmarshal(data, &inputs))
	assert.Equal(t, map[string]any{"phi": 0.5}, inputs)

	assert.FileExists(t, filepath.Join(dir, "receiver.yaml"))
}

// counterValue reads the current value of a prometheus counter.
func counterValue(t *testing.T, counter interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	var metric dto.Metric
	require.NoError(t, counter.Write(&metric))
	return metric.Counter.GetValue()
}

// TestPrepareInput_RecordsReduction checks the reduction counters move when
// input preparation reduces the network.
func TestPrepareInput_RecordsReduction(t *testing.T) {
	reg := metrics.NewRegistry()

	_, err := prepareInput(testAsset(), t.TempDir(), reg)
	require.NoError(t, err)

	counter, err := reg.ReductionsTotal.GetMetricWithLabelValues("success")
	require.NoError(t, err)
	assert.Equal(t, float64(1), counterValue(t, counter))
	assert.Equal(t, float64(0), counterValue(t, reg.ZeroFidelityLinks))
}

// TestPrepareInput_RecordsFailedReduction checks a reduction error is counted
// against the failed label.
func TestPrepareInput_RecordsFailedReduction(t *testing.T) {
	reg := metrics.NewRegistry()
	a := testAsset()
	a.Network.Channels = nil

	_, err := prepareInput(a, t.TempDir(), reg)
	require.Error(t, err)

	counter, err := reg.ReductionsTotal.GetMetricWithLabelValues("failed")
	require.NoError(t, err)
	assert.Equal(t, float64(1), counterValue(t, counter))
}

// TestProcess_CountsDroppedRecords checks a record with an unrecognized tag
// moves the dropped-records counter when a round is processed.
func TestProcess_CountsDroppedRecords(t *testing.T) {
	path := t.TempDir()
	writeSimulatorOutput(t, path)
	unknown := "- INS: mystery_trace\n  WCT: 2.0\n"
	require.NoError(t, os.WriteFile(
		filepath.Join(path, "raw_output", "LAST", "sender_class_comm.yaml"), []byte(unknown), 0o644))

	reg := metrics.NewRegistry()
	m := NewManager("local", testAsset(), path,
		WithSimulatorCommand([]string{"true"}), WithMetrics(reg))
	_, err := m.Process(context.Background())
	require.NoError(t, err)

	assert.Equal(t, float64(1), counterValue(t, reg.DroppedRecordsTotal))
	decoded, err := reg.DecodedInstructionsTotal.GetMetricWithLabelValues(simlog.CommandEntanglement)
	require.NoError(t, err)
	assert.Equal(t, float64(1), counterValue(t, decoded))
}

// TestProcess_ConvertsSimulatorOutput checks a successful run yields a
// result with the round outcome and rewritten instructions.
func TestProcess_ConvertsSimulatorOutput(t *testing.T) {
	path := t.TempDir()
	writeSimulatorOutput(t, path)

	m := NewManager("local", testAsset(), path, WithSimulatorCommand([]string{"true"}))
	res, err := m.Process(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.RoundNumber)
	assert.Equal(t, "local", res.RoundSet)
	// The entanglement start plus the synthetic finish marker.
	require.Len(t, res.Instructions, 2)
	epr, ok := res.Instructions[0].(*simlog.Entanglement)
	require.True(t, ok)
	assert.Equal(t, []string{"amsterdam-leiden"}, epr.Channels)
	assert.IsType(t, &simlog.ApplicationFinished{}, res.Instructions[1])
}

// TestProcess_ExitFailureBecomesErrorResult checks a nonzero simulator exit
// produces an error result instead of a Go error.
func TestProcess_ExitFailureBecomesErrorResult(t *testing.T) {
	m := NewManager("local", testAsset(), t.TempDir(), WithSimulatorCommand([]string{"false"}))

	res, err := m.Process(context.Background())
	require.NoError(t, err)

	errResult := res.RoundResult.(map[string]any)["error"].(result.RoundError)
	assert.Equal(t, "CalledProcessError", errResult.Exception)
	assert.Contains(t, errResult.Message, "exit status 1")
	assert.Empty(t, res.Instructions)
}

// TestProcess_TimeoutBecomesErrorResult checks a run exceeding the timeout
// is reported as a timeout error result.
func TestProcess_TimeoutBecomesErrorResult(t *testing.T) {
	m := NewManager("local", testAsset(), t.TempDir(),
		WithSimulatorCommand([]string{"sh", "-c", "sleep 5"}),
		WithTimeout(100*time.Millisecond))

	res, err := m.Process(context.Background())
	require.NoError(t, err)

	errResult := res.RoundResult.(map[string]any)["error"].(result.RoundError)
	assert.Equal(t, "TimeoutExpired", errResult.Exception)
	assert.Contains(t, errResult.Message, "timed out")
}

// TestProcess_InputErrorsBubble checks a broken asset fails the round
// outright rather than producing an error result.
func TestProcess_InputErrorsBubble(t *testing.T) {
	a := testAsset()
	a.Network.Channels = nil

	m := NewManager("local", a, t.TempDir(), WithSimulatorCommand([]string{"true"}))
	_, err := m.Process(context.Background())
	assert.ErrorIs(t, err, topology.ErrNotFullyConnected)
}

// TestResults_RoundTrip checks processed results survive persistence.
func TestResults_RoundTrip(t *testing.T) {
	path := t.TempDir()
	results := []*result.Result{
		result.Generate("local", 1, map[string]any{"ok": true}, nil, nil),
	}

	require.NoError(t, WriteResults(path, results))

	loaded, err := ReadResults(path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, float64(1), loaded[0]["round_number"])
}

// TestReadResults_Missing checks an experiment without results reports
// ErrNoResults.
func TestReadResults_Missing(t *testing.T) {
	_, err := ReadResults(t.TempDir())
	assert.ErrorIs(t, err, ErrNoResults)
}

// TestClean_ResetsWorkDirectories checks input and raw output are emptied
// but recreated.
func TestClean_ResetsWorkDirectories(t *testing.T) {
	path := t.TempDir()
	writeSimulatorOutput(t, path)
	require.NoError(t, os.MkdirAll(filepath.Join(path, "input"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(path, "input", "network.yaml"), []byte("x"), 0o644))

	m := NewManager("local", testAsset(), path)
	require.NoError(t, m.Clean())

	entries, err := os.ReadDir(filepath.Join(path, "input"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = os.ReadDir(filepath.Join(path, "raw_output"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
