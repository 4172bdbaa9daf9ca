package result

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/qnetlab/qne-adk/pkg/simlog"
)

// TestGenerate builds a success result and checks its JSON shape.
func TestGenerate(t *testing.T) {
	instructions := []simlog.Instruction{
		&simlog.UserMessage{Command: simlog.CommandUserMessage, Message: "hi"},
	}

	res := Generate("local", 1, map[string]any{"app_alice": 1}, instructions, nil)

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded["round_number"] != float64(1) {
		t.Errorf("round_number = %v", decoded["round_number"])
	}
	if decoded["round_set"] != "local" {
		t.Errorf("round_set = %v", decoded["round_set"])
	}
	if _, ok := decoded["cumulative_result"].(map[string]any); !ok {
		t.Errorf("cumulative_result = %v, want empty object", decoded["cumulative_result"])
	}
	list, ok := decoded["instructions"].([]any)
	if !ok || len(list) != 1 {
		t.Fatalf("instructions = %v", decoded["instructions"])
	}
}

// TestGenerateError builds a failure result with the empty instruction list
// serialized as [], not null.
func TestGenerateError(t *testing.T) {
	res := GenerateError("local", 1, "TimeoutExpired", "call timed out after 60 seconds", "trace")

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(data), `"instructions":null`) {
		t.Error("instructions should marshal as an empty list")
	}

	var decoded struct {
		RoundResult struct {
			Error RoundError `json:"error"`
		} `json:"round_result"`
		Instructions []any `json:"instructions"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.RoundResult.Error.Exception != "TimeoutExpired" {
		t.Errorf("exception = %q", decoded.RoundResult.Error.Exception)
	}
	if len(decoded.Instructions) != 0 {
		t.Errorf("instructions = %v, want empty", decoded.Instructions)
	}
}
