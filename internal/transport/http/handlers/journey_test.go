package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"hrflow/internal/app/server"
	"hrflow/internal/platform/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   any             `json:"error"`
}

func testConfig(dbURL string) config.Config {
	return config.Config{
		DatabaseURL:         dbURL,
		JWTSecret:           "test-secret",
		Environment:         "test",
		SeedTenantName:      "Test Tenant",
		SeedTenantSubdomain: "test",
		SeedAdminEmail:      "admin@test.local",
		SeedAdminPassword:   "ChangeMe123!",
		EmailFrom:           "no-reply@test.local",
		RunMigrations:       true,
		RunSeed:             true,
		MaxBodyBytes:        1048576,
		RateLimitPerMinute:  1000,
		DispatchBatchSize:   50,
		DispatchConcurrency: 4,
		SendTimeout:         5 * time.Second,
		EmailMaxRetries:     3,
		ReminderWindowDays:  30,
	}
}

func TestAppraisalCycleAndReminderJourney(t *testing.T) {
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

	token := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	employeeEmail := fmt.Sprintf("journey-%d@example.com", time.Now().UnixNano())
	employeeID := createEmployee(t, client, ts.URL, token, employeeEmail)

	today := time.Now()
	contractID := createdID(t, postJSON(t, client, ts.URL+"/api/v1/contracts", token, map[string]any{
		"employeeId":     employeeID,
		"jobTitle":       "Engineer",
		"employmentType": "full_time",
		"startDate":      today.AddDate(0, -1, 0).Format("2006-01-02"),
	}))
	postJSON(t, client, ts.URL+"/api/v1/contracts/"+contractID+"/sign", token, map[string]any{})

	templateID := createdID(t, postJSON(t, client, ts.URL+"/api/v1/appraisals/templates", token, map[string]any{
		"name": "Annual Review",
	}))
	questionID := createdID(t, postJSON(t, client, ts.URL+"/api/v1/appraisals/templates/"+templateID+"/questions", token, map[string]any{
		"group":    "employee",
		"type":     "scale",
		"prompt":   "How did the year go?",
		"required": true,
		"position": 1,
	}))

	cycleID := createdID(t, postJSON(t, client, ts.URL+"/api/v1/appraisals/cycles", token, map[string]any{
		"name":                 "FY Review",
		"type":                 "direct_score",
		"templateId":           templateID,
		"startDate":            today.AddDate(0, 0, 3).Format("2006-01-02"),
		"endDate":              today.AddDate(0, 0, 20).Format("2006-01-02"),
		"selfReviewDueDate":    today.AddDate(0, 0, 10).Format("2006-01-02"),
		"managerReviewDueDate": today.AddDate(0, 0, 15).Format("2006-01-02"),
	}))

	armEnv := postJSON(t, client, ts.URL+"/api/v1/appraisals/cycles/"+cycleID+"/arm-reminders", token, map[string]any{})
	var armed map[string]any
	if err := json.Unmarshal(armEnv.Data, &armed); err != nil {
		t.Fatalf("failed to decode arm response: %v", err)
	}
	if active, _ := armed["active"].(bool); !active {
		t.Fatalf("expected armed reminder config to be active, got %+v", armed)
	}

	stats := triggerJob(t, client, ts.URL+"/api/v1/jobs/reminder-scan", token)
	if errs := int(stats["errors"].(float64)); errs != 0 {
		t.Fatalf("expected zero reminder scan errors, got %d", errs)
	}

	scheduled := getJSONSlice(t, client, ts.URL+"/api/v1/appraisals/cycles/"+cycleID+"/scheduled-emails", token)
	if len(scheduled) == 0 {
		t.Fatal("expected scheduled emails after reminder scan")
	}
	for _, row := range scheduled {
		if status, _ := row["status"].(string); status != "pending" {
			t.Fatalf("expected pending scheduled email, got %v", row["status"])
		}
	}

	// All milestone sends are at a future 01:00, so a dispatch finds nothing due.
	dispatchStats := triggerJob(t, client, ts.URL+"/api/v1/jobs/email-dispatch", token)
	if processed := int(dispatchStats["processed"].(float64)); processed != 0 {
		t.Fatalf("expected no due emails, dispatched %d", processed)
	}

	answerURL := ts.URL + "/api/v1/appraisals/cycles/" + cycleID + "/answers/" + contractID
	putJSON(t, client, answerURL+"/self", token, map[string]any{
		"answers":     map[string]string{questionID: "4"},
		"directScore": 4,
	})
	postJSON(t, client, answerURL+"/submit", token, map[string]any{"role": "self"})

	// Resubmitting a submitted section conflicts.
	resp := doJSON(t, client, http.MethodPost, answerURL+"/submit", token, map[string]any{"role": "self"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on double submit, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	scores := getJSONSlice(t, client, ts.URL+"/api/v1/appraisals/cycles/"+cycleID+"/scores", token)
	if len(scores) == 0 {
		t.Fatal("expected scores for submitted answers")
	}

	// An unknown cycle id is a client error on every cycle-scoped read.
	missing := ts.URL + "/api/v1/appraisals/cycles/" + uuid.NewString()
	for _, url := range []string{missing, missing + "/scores", missing + "/distributions"} {
		resp := doJSON(t, client, http.MethodGet, url, token, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404 for %s, got %d", url, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestLeaveRequestJourney(t *testing.T) {
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

	token := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	employeeEmail := fmt.Sprintf("leave-%d@example.com", time.Now().UnixNano())
	employeeID := createEmployee(t, client, ts.URL, token, employeeEmail)

	leaveTypeID := createdID(t, postJSON(t, client, ts.URL+"/api/v1/leave/types", token, map[string]any{
		"name":   fmt.Sprintf("Annual %d", time.Now().UnixNano()),
		"code":   fmt.Sprintf("ANL%d", time.Now().UnixNano()%100000),
		"isPaid": true,
	}))
	postJSON(t, client, ts.URL+"/api/v1/leave/policies", token, map[string]any{
		"leaveTypeId":   leaveTypeID,
		"accrualRate":   1.5,
		"accrualPeriod": "monthly",
		"entitlement":   18,
		"allowNegative": true,
	})

	requestID := createdID(t, postJSON(t, client, ts.URL+"/api/v1/leave/requests", token, map[string]any{
		"employeeId":  employeeID,
		"leaveTypeId": leaveTypeID,
		"startDate":   time.Now().AddDate(0, 1, 0).Format("2006-01-02"),
		"endDate":     time.Now().AddDate(0, 1, 2).Format("2006-01-02"),
		"reason":      "Rest",
	}))

	approveEnv := postJSON(t, client, ts.URL+"/api/v1/leave/requests/"+requestID+"/approve", token, map[string]any{})
	var approved map[string]any
	if err := json.Unmarshal(approveEnv.Data, &approved); err != nil {
		t.Fatalf("failed to decode approve response: %v", err)
	}
	if status, _ := approved["status"].(string); status != "approved" {
		t.Fatalf("expected approved leave request, got %v", approved["status"])
	}

	balances := getJSONSlice(t, client, ts.URL+"/api/v1/leave/balances?employeeId="+employeeID, token)
	if len(balances) == 0 {
		t.Fatal("expected leave balances after approval")
	}
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("expected token")
	}
	return token
}

func createEmployee(t *testing.T, client *http.Client, baseURL, token, email string) string {
	t.Helper()
	return createdID(t, postJSON(t, client, baseURL+"/api/v1/employees", token, map[string]any{
		"firstName": "Journey",
		"lastName":  "Tester",
		"email":     email,
		"status":    "active",
	}))
}

func createdID(t *testing.T, env envelope) string {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatalf("expected id in create response, got %+v", payload)
	}
	return id
}

func triggerJob(t *testing.T, client *http.Client, url, token string) map[string]any {
	t.Helper()
	resp := doJSON(t, client, http.MethodPost, url, token, map[string]any{})
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read trigger response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected trigger status 200, got %d: %s", resp.StatusCode, string(raw))
	}
	var payload struct {
		Message string         `json:"message"`
		Stats   map[string]any `json:"stats"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed to decode trigger response: %v", err)
	}
	if payload.Message == "" {
		t.Fatalf("expected trigger message, got %s", string(raw))
	}
	if _, ok := payload.Stats["duration"].(string); !ok {
		t.Fatalf("expected human-readable duration in stats, got %s", string(raw))
	}
	return payload.Stats
}

func postJSON(t *testing.T, client *http.Client, url, token string, body map[string]any) envelope {
	t.Helper()
	return decodeOK(t, doJSON(t, client, http.MethodPost, url, token, body))
}

func putJSON(t *testing.T, client *http.Client, url, token string, body map[string]any) envelope {
	t.Helper()
	return decodeOK(t, doJSON(t, client, http.MethodPut, url, token, body))
}

func getJSON(t *testing.T, client *http.Client, url, token string) envelope {
	t.Helper()
	return decodeOK(t, doJSON(t, client, http.MethodGet, url, token, nil))
}

func getJSONSlice(t *testing.T, client *http.Client, url, token string) []map[string]any {
	t.Helper()
	env := getJSON(t, client, url, token)
	var payload []map[string]any
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("failed to decode list response: %v", err)
	}
	return payload
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, body map[string]any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeOK(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}
