package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/qnetlab/qne-adk/pkg/logging"
)

// Round set statuses reported by the coordinator.
const (
	RoundSetStatusNew      = "NEW"
	RoundSetStatusRunning  = "RUNNING"
	RoundSetStatusComplete = "COMPLETE"
	RoundSetStatusFailed   = "FAILED"
)

var (
	// ErrRoundSetFailed means the coordinator finished the round set without
	// producing results.
	ErrRoundSetFailed = errors.New("round set failed")
	// ErrResultsNotReady means the round set has not reached a final state yet.
	ErrResultsNotReady = errors.New("results not ready")
)

// RoundSet is one submitted batch of experiment rounds on the coordinator.
type RoundSet struct {
	URL            string `json:"url"`
	Status         string `json:"status"`
	Input          string `json:"input"`
	NumberOfRounds int    `json:"number_of_rounds"`
}

// Finished reports whether the round set reached a final state.
func (r *RoundSet) Finished() bool {
	return r.Status == RoundSetStatusComplete || r.Status == RoundSetStatusFailed
}

// CreateRoundSet submits a new round set for the given asset.
func (c *Client) CreateRoundSet(assetURL string, numberOfRounds int) (*RoundSet, error) {
	payload := map[string]any{
		"number_of_rounds": numberOfRounds,
		"status":           RoundSetStatusNew,
		"input":            assetURL,
	}
	var created RoundSet
	if err := c.Post("/round-sets/", payload, &created); err != nil {
		return nil, fmt.Errorf("create round set: %w", err)
	}
	return &created, nil
}

// RetrieveRoundSet fetches the current state of a round set.
func (c *Client) RetrieveRoundSet(path string) (*RoundSet, error) {
	var roundSet RoundSet
	if err := c.Get(path, &roundSet); err != nil {
		return nil, fmt.Errorf("retrieve round set: %w", err)
	}
	return &roundSet, nil
}

// RoundSetResults fetches the result documents of a finished round set. It
// returns ErrResultsNotReady while the round set is still being processed and
// ErrRoundSetFailed when the coordinator gave up on it.
func (c *Client) RoundSetResults(path string) ([]map[string]any, error) {
	roundSet, err := c.RetrieveRoundSet(path)
	if err != nil {
		return nil, err
	}
	return c.resultsOf(roundSet)
}

// WaitForResults polls a round set until it finishes, then fetches its
// results. The poll interval bounds how often the coordinator is asked; the
// deadline lives in the context.
func (c *Client) WaitForResults(ctx context.Context, path string, poll time.Duration) ([]map[string]any, error) {
	for {
		roundSet, err := c.RetrieveRoundSet(path)
		if err != nil {
			return nil, err
		}
		if roundSet.Finished() {
			return c.resultsOf(roundSet)
		}
		c.log.Debug("round set still running",
			logging.String("round_set", path),
			logging.String("status", roundSet.Status))

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for round set %q: %w", path, ctx.Err())
		case <-time.After(poll):
		}
	}
}

func (c *Client) resultsOf(roundSet *RoundSet) ([]map[string]any, error) {
	switch roundSet.Status {
	case RoundSetStatusComplete:
		var results []map[string]any
		if err := c.Get(resultsPath(roundSet.URL), &results); err != nil {
			return nil, fmt.Errorf("fetch round set results: %w", err)
		}
		return results, nil
	case RoundSetStatusFailed:
		return nil, fmt.Errorf("round set %q: %w", roundSet.URL, ErrRoundSetFailed)
	default:
		return nil, fmt.Errorf("round set %q is %s: %w", roundSet.URL, roundSet.Status, ErrResultsNotReady)
	}
}

func resultsPath(roundSetURL string) string {
	return strings.TrimRight(roundSetURL, "/") + "/results/"
}
