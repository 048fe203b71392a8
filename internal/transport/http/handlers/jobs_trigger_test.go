package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"hrflow/internal/app/server"
)

func TestJobTriggersAreBareJSONAndAuthGated(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.NewFromConfig(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	// No token: the permission gate rejects before the job runs.
	resp, err := client.Post(ts.URL+"/api/v1/jobs/reminder-scan", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected auth rejection, got %d", resp.StatusCode)
	}

	token := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	for _, path := range []string{"/api/v1/jobs/reminder-scan", "/api/v1/jobs/email-dispatch", "/api/v1/jobs/leave-accrual"} {
		resp := doJSON(t, client, http.MethodPost, ts.URL+path, token, map[string]any{})
		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			t.Fatalf("failed to read %s response: %v", path, err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 from %s, got %d: %s", path, resp.StatusCode, string(raw))
		}

		// The trigger endpoints answer a bare document, not the API envelope.
		var payload map[string]any
		if err := json.Unmarshal(raw, &payload); err != nil {
			t.Fatalf("failed to decode %s response: %v", path, err)
		}
		if _, hasEnvelope := payload["success"]; hasEnvelope {
			t.Fatalf("expected bare trigger response from %s, got envelope: %s", path, string(raw))
		}
		if msg, _ := payload["message"].(string); msg == "" {
			t.Fatalf("expected message from %s, got %s", path, string(raw))
		}
		stats, ok := payload["stats"].(map[string]any)
		if !ok {
			t.Fatalf("expected stats from %s, got %s", path, string(raw))
		}
		for _, key := range []string{"processed", "errors", "duration"} {
			if _, present := stats[key]; !present {
				t.Fatalf("expected stats.%s from %s, got %s", key, path, string(raw))
			}
		}
		if _, isString := stats["duration"].(string); !isString {
			t.Fatalf("expected duration as a string from %s, got %s", path, string(raw))
		}
	}
}
