package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRoundSetServer serves a round set that flips to the given final status
// after the first retrieval, plus its results endpoint.
func newRoundSetServer(t *testing.T, finalStatus string) *httptest.Server {
	t.Helper()
	retrievals := 0
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/jwt/refresh/":
			json.NewEncoder(w).Encode(tokenResponse{Access: "acc"})
		case "/round-sets/":
			var payload map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, RoundSetStatusNew, payload["status"])
			json.NewEncoder(w).Encode(RoundSet{
				URL:            "/round-sets/7/",
				Status:         RoundSetStatusNew,
				Input:          payload["input"].(string),
				NumberOfRounds: int(payload["number_of_rounds"].(float64)),
			})
		case "/round-sets/7/":
			status := RoundSetStatusRunning
			if retrievals > 0 {
				status = finalStatus
			}
			retrievals++
			json.NewEncoder(w).Encode(RoundSet{URL: "/round-sets/7/", Status: status})
		case "/round-sets/7/results/":
			json.NewEncoder(w).Encode([]map[string]any{
				{"round_number": 1, "round_result": map[string]any{"app_alice": 1}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
}

func newRoundSetClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	store := newTestStore(t)
	require.NoError(t, store.StoreLogin(server.URL, signedToken(t, time.Hour), "u", "p"))
	return NewClient(server.URL, store)
}

// TestCreateRoundSet submits a round set and returns the coordinator's copy.
func TestCreateRoundSet(t *testing.T) {
	server := newRoundSetServer(t, RoundSetStatusComplete)
	defer server.Close()
	client := newRoundSetClient(t, server)

	roundSet, err := client.CreateRoundSet("/assets/3/", 5)
	require.NoError(t, err)
	assert.Equal(t, "/round-sets/7/", roundSet.URL)
	assert.Equal(t, 5, roundSet.NumberOfRounds)
	assert.False(t, roundSet.Finished())
}

// TestWaitForResults_PollsUntilComplete keeps polling a running round set and
// fetches results once it completes.
func TestWaitForResults_PollsUntilComplete(t *testing.T) {
	server := newRoundSetServer(t, RoundSetStatusComplete)
	defer server.Close()
	client := newRoundSetClient(t, server)

	results, err := client.WaitForResults(context.Background(), "/round-sets/7/", time.Millisecond)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, float64(1), results[0]["round_number"])
}

// TestWaitForResults_FailedRoundSet surfaces a failed round set as an error
// instead of empty results.
func TestWaitForResults_FailedRoundSet(t *testing.T) {
	server := newRoundSetServer(t, RoundSetStatusFailed)
	defer server.Close()
	client := newRoundSetClient(t, server)

	_, err := client.WaitForResults(context.Background(), "/round-sets/7/", time.Millisecond)
	assert.ErrorIs(t, err, ErrRoundSetFailed)
}

// TestRoundSetResults_NotReady reports an unfinished round set without
// blocking.
func TestRoundSetResults_NotReady(t *testing.T) {
	server := newRoundSetServer(t, RoundSetStatusComplete)
	defer server.Close()
	client := newRoundSetClient(t, server)

	_, err := client.RoundSetResults("/round-sets/7/")
	assert.ErrorIs(t, err, ErrResultsNotReady)
}

// TestWaitForResults_ContextDeadline stops polling when the context expires.
func TestWaitForResults_ContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/jwt/refresh/":
			json.NewEncoder(w).Encode(tokenResponse{Access: "acc"})
		default:
			json.NewEncoder(w).Encode(RoundSet{URL: r.URL.Path, Status: RoundSetStatusRunning})
		}
	}))
	defer server.Close()
	client := newRoundSetClient(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.WaitForResults(ctx, "/round-sets/7/", 5*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
