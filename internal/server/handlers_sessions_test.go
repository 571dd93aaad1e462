package server

import (
	"fmt"
	"net/http"
	"testing"
)

// getRaw performs a GET without decoding the body, for asserting on
// redirects.
func getRaw(t *testing.T, client *http.Client, url string) *http.Response {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	resp.Body.Close()
	return resp
}

func TestSessionCRUD(t *testing.T) {
	ts, client, _ := newTestEnv(t)
	signUp(t, client, ts.URL, "alex@example.com")

	status, body := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/sessions", validSession("2026-08-01", "Leg day"))
	if status != http.StatusCreated {
		t.Fatalf("create returned %d: %v", status, body)
	}
	id, _ := body["id"].(string)
	if id == "" {
		t.Fatalf("create response %v has no id", body)
	}

	status, body = doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/sessions/"+id, nil)
	if status != http.StatusOK {
		t.Fatalf("get returned %d: %v", status, body)
	}
	if got := body["fullTitle"]; got != "2026-08-01 17:30: Leg day" {
		t.Errorf("fullTitle = %v", got)
	}

	update := validSession("2026-08-01", "Heavy leg day")
	status, _ = doJSON(t, client, http.MethodPut, ts.URL+"/api/v1/sessions/"+id, update)
	if status != http.StatusOK {
		t.Fatalf("update returned %d", status)
	}
	_, body = doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/sessions/"+id, nil)
	session := body["session"].(map[string]any)
	if session["shortTitle"] != "Heavy leg day" {
		t.Errorf("shortTitle after update = %v", session["shortTitle"])
	}

	status, _ = doJSON(t, client, http.MethodDelete, ts.URL+"/api/v1/sessions/"+id, nil)
	if status != http.StatusOK {
		t.Fatalf("delete returned %d", status)
	}
	status, _ = doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/sessions/"+id, nil)
	if status != http.StatusNotFound {
		t.Fatalf("get after delete returned %d, want 404", status)
	}
}

// TestCreateSessionRejections covers the error taxonomy on create: inline
// field errors and the empty-session business rule.
func TestCreateSessionRejections(t *testing.T) {
	ts, client, _ := newTestEnv(t)
	signUp(t, client, ts.URL, "alex@example.com")

	empty := map[string]any{"date": "2026-08-01", "time": "17:30", "exercises": []any{}}
	status, body := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/sessions", empty)
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("empty session returned %d: %v", status, body)
	}

	bad := validSession("not-a-date", "Leg day")
	status, body = doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/sessions", bad)
	if status != http.StatusBadRequest {
		t.Fatalf("bad date returned %d: %v", status, body)
	}
	if _, ok := body["fieldErrors"]; !ok {
		t.Errorf("response %v has no fieldErrors", body)
	}
}

// TestListPagination pages newest-first with the configured page size.
func TestListPagination(t *testing.T) {
	ts, client, _ := newTestEnv(t)
	signUp(t, client, ts.URL, "alex@example.com")

	for day := 1; day <= 5; day++ {
		payload := validSession(fmt.Sprintf("2026-08-%02d", day), fmt.Sprintf("Day %d", day))
		if status, body := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/sessions", payload); status != http.StatusCreated {
			t.Fatalf("create day %d returned %d: %v", day, status, body)
		}
	}

	status, body := doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/sessions", nil)
	if status != http.StatusOK {
		t.Fatalf("list returned %d: %v", status, body)
	}
	if got := body["total"]; got != float64(5) {
		t.Errorf("total = %v, want 5", got)
	}
	if got := body["pageCount"]; got != float64(2) {
		t.Errorf("pageCount = %v, want 2", got)
	}
	sessions := body["sessions"].([]any)
	if len(sessions) != 3 {
		t.Fatalf("page 1 has %d sessions, want 3", len(sessions))
	}
	first := sessions[0].(map[string]any)
	if first["date"] != "2026-08-05" {
		t.Errorf("first session date = %v, want newest first", first["date"])
	}

	_, body = doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/sessions?page=2", nil)
	sessions = body["sessions"].([]any)
	if len(sessions) != 2 {
		t.Fatalf("page 2 has %d sessions, want 2", len(sessions))
	}
}

// TestListCanonicalRedirect corrects bad query parameters with a redirect to
// the canonical URL instead of an error page.
func TestListCanonicalRedirect(t *testing.T) {
	ts, client, _ := newTestEnv(t)
	signUp(t, client, ts.URL, "alex@example.com")

	for day := 1; day <= 4; day++ {
		payload := validSession(fmt.Sprintf("2026-08-%02d", day), "Session")
		doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/sessions", payload)
	}

	tests := []struct {
		name     string
		query    string
		location string
	}{
		{"page past the end", "?page=99", "/api/v1/sessions?page=2"},
		{"page below one", "?page=0", "/api/v1/sessions"},
		{"non-numeric page", "?page=abc", "/api/v1/sessions"},
		{"malformed date dropped", "?date=2026-13-99", "/api/v1/sessions"},
		{"malformed date keeps page", "?date=junk&page=2", "/api/v1/sessions?page=2"},
		{"swapped range", "?startDate=2026-08-04&endDate=2026-08-01", "/api/v1/sessions?endDate=2026-08-04&startDate=2026-08-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := getRaw(t, client, ts.URL+"/api/v1/sessions"+tt.query)
			if resp.StatusCode != http.StatusSeeOther {
				t.Fatalf("status = %d, want 303", resp.StatusCode)
			}
			if got := resp.Header.Get("Location"); got != tt.location {
				t.Errorf("Location = %q, want %q", got, tt.location)
			}
		})
	}
}

// TestListDateFilter narrows the listing to a single day or a range.
func TestListDateFilter(t *testing.T) {
	ts, client, _ := newTestEnv(t)
	signUp(t, client, ts.URL, "alex@example.com")

	for day := 1; day <= 3; day++ {
		payload := validSession(fmt.Sprintf("2026-08-%02d", day), "Session")
		doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/sessions", payload)
	}

	_, body := doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/sessions?date=2026-08-02", nil)
	if got := body["total"]; got != float64(1) {
		t.Errorf("single day total = %v, want 1", got)
	}

	_, body = doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/sessions?startDate=2026-08-02&endDate=2026-08-03", nil)
	if got := body["total"]; got != float64(2) {
		t.Errorf("range total = %v, want 2", got)
	}
}

// TestOwnershipIsolation keeps one account's sessions invisible to another.
func TestOwnershipIsolation(t *testing.T) {
	ts, alex, _ := newTestEnv(t)
	signUp(t, alex, ts.URL, "alex@example.com")

	_, body := doJSON(t, alex, http.MethodPost, ts.URL+"/api/v1/sessions", validSession("2026-08-01", "Private"))
	id := body["id"].(string)

	blake := newTestClient(t)
	signUp(t, blake, ts.URL, "blake@example.com")

	if status, _ := doJSON(t, blake, http.MethodGet, ts.URL+"/api/v1/sessions/"+id, nil); status != http.StatusNotFound {
		t.Errorf("cross-account get returned %d, want 404", status)
	}
	if status, _ := doJSON(t, blake, http.MethodDelete, ts.URL+"/api/v1/sessions/"+id, nil); status != http.StatusNotFound {
		t.Errorf("cross-account delete returned %d, want 404", status)
	}
	_, body = doJSON(t, blake, http.MethodGet, ts.URL+"/api/v1/sessions", nil)
	if got := body["total"]; got != float64(0) {
		t.Errorf("cross-account list total = %v, want 0", got)
	}
}

// TestFlashStatus surfaces the pending status message exactly once on the
// next listing.
func TestFlashStatus(t *testing.T) {
	ts, client, _ := newTestEnv(t)
	signUp(t, client, ts.URL, "alex@example.com")

	doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/sessions", validSession("2026-08-01", "Leg day"))

	_, body := doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/sessions", nil)
	status, ok := body["status"].([]any)
	if !ok || len(status) != 1 || status[0] != "Training session saved" {
		t.Fatalf("status = %v, want the saved message once", body["status"])
	}

	_, body = doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/sessions", nil)
	if body["status"] != nil {
		t.Errorf("status on second listing = %v, want none", body["status"])
	}
}

func TestSessionStats(t *testing.T) {
	ts, client, _ := newTestEnv(t)
	signUp(t, client, ts.URL, "alex@example.com")

	doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/sessions", validSession("2026-08-01", "A"))
	doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/sessions", validSession("2026-08-02", "B"))

	status, body := doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/sessions/stats", nil)
	if status != http.StatusOK {
		t.Fatalf("stats returned %d: %v", status, body)
	}
	if body["sessions"] != float64(2) || body["sets"] != float64(4) || body["reps"] != float64(20) {
		t.Errorf("stats = %v, want 2 sessions, 4 sets, 20 reps", body)
	}
	if body["volumeKg"] != float64(2000) {
		t.Errorf("volumeKg = %v, want 2000", body["volumeKg"])
	}
}
