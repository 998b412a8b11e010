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

type createdQuestion struct {
	ID    int    `json:"id"`
	Topic string `json:"topic"`
}

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// uniqueTopic keeps runs against a long-lived server from colliding on the
// duplicate check.
func uniqueTopic(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func postJSON(t *testing.T, url string, payload interface{}) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	return resp
}

func createQuestion(t *testing.T, baseURL, topic, text string) createdQuestion {
	t.Helper()

	resp := postJSON(t, fmt.Sprintf("%s/v1/questions", baseURL), map[string]string{
		"Topic":       topic,
		"Question":    text,
		"Answer":      "4",
		"Distractors": "3, 5",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected create status: %d", resp.StatusCode)
	}

	var out struct {
		Question createdQuestion `json:"question"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode create response failed: %v", err)
	}
	if out.Question.ID <= 0 {
		t.Fatalf("invalid id in create response: %d", out.Question.ID)
	}
	return out.Question
}
