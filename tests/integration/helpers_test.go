//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"
)

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

var httpClient = &http.Client{Timeout: 10 * time.Second}

func postJSON(t *testing.T, baseURL, path string, body interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	resp, err := httpClient.Post(fmt.Sprintf("%s%s", baseURL, path), "application/json", &buf)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	return resp
}

func getJSON(t *testing.T, baseURL, path string, out interface{}) {
	t.Helper()

	resp, err := httpClient.Get(fmt.Sprintf("%s%s", baseURL, path))
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("GET %s: decode failed: %v", path, err)
	}
}

type questionView struct {
	Theme    string   `json:"theme"`
	Options  []string `json:"options"`
	Answered bool     `json:"answered"`
}

type snapshot struct {
	Phase         string        `json:"phase"`
	Score         int           `json:"score"`
	QuestionCount int           `json:"question_count"`
	Question      *questionView `json:"question"`
}

// resetToStart brings the shared server back to a fresh START phase.
func resetToStart(t *testing.T, baseURL string) {
	t.Helper()

	postJSON(t, baseURL, "/v1/stats/close", nil).Body.Close()
	resp := postJSON(t, baseURL, "/v1/game/restart", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("restart: unexpected status %d", resp.StatusCode)
	}
	postJSON(t, baseURL, "/v1/themes/all", nil).Body.Close()
}
