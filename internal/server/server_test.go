package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/claude/replog/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// newTestEnv starts a server over the in-memory backend and returns a client
// with its own cookie jar. Redirects are not followed so tests can assert on
// them.
func newTestEnv(t *testing.T) (*httptest.Server, *http.Client, *storage.Memory) {
	t.Helper()

	mem := storage.NewMemory()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(mem, mem, Options{
		SessionSecret: "test-secret",
		BcryptCost:    bcrypt.MinCost,
		PageSize:      3,
	}, log)

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return ts, newTestClient(t), mem
}

// newTestClient returns a client with a fresh cookie jar, for acting as a
// separate signed-in account against the same server.
func newTestClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// doJSON performs a request with a JSON body (nil for none) and decodes the
// JSON response into a generic map.
func doJSON(t *testing.T, client *http.Client, method, url string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decode response %q: %v", raw, err)
		}
	}
	return resp.StatusCode, decoded
}

// signUp registers and signs in an account through the API.
func signUp(t *testing.T, client *http.Client, baseURL, email string) {
	t.Helper()
	status, body := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/auth/signup", map[string]string{
		"email":     email,
		"firstName": "Alex",
		"lastName":  "Lifter",
		"password":  "squats4life",
	})
	if status != http.StatusCreated {
		t.Fatalf("sign-up returned %d: %v", status, body)
	}
}

// validSession is a well-formed session payload for the given date.
func validSession(date, short string) map[string]any {
	return map[string]any{
		"date":       date,
		"time":       "17:30",
		"shortTitle": short,
		"exercises": []map[string]any{
			{
				"exercise": "Back Squat",
				"setType":  "work",
				"sets":     2,
				"reps":     []int{5, 5},
				"weight":   100,
			},
		},
	}
}
