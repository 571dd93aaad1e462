package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
)

// TestSignUpAndMe registers an account and confirms the session cookie signs
// subsequent requests.
func TestSignUpAndMe(t *testing.T) {
	ts, client, _ := newTestEnv(t)
	signUp(t, client, ts.URL, "alex@example.com")

	status, body := doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/auth/me", nil)
	if status != http.StatusOK {
		t.Fatalf("me returned %d: %v", status, body)
	}
	if body["email"] != "alex@example.com" {
		t.Errorf("me email = %v, want alex@example.com", body["email"])
	}
	if _, ok := body["passwordHash"]; ok {
		t.Error("me response leaks the password hash")
	}
}

// TestSessionCookiePlainHTTP inspects the cookie sign-up sets. It must not
// carry the Secure attribute: clients on plain HTTP silently drop Secure
// cookies, turning every request after sign-in into a 401.
func TestSessionCookiePlainHTTP(t *testing.T) {
	ts, _, _ := newTestEnv(t)

	body, err := json.Marshal(map[string]string{
		"email":     "alex@example.com",
		"firstName": "Alex",
		"lastName":  "Lifter",
		"password":  "squats4life",
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(ts.URL+"/api/v1/auth/signup", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("sign-up: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("sign-up returned %d", resp.StatusCode)
	}

	var found bool
	for _, c := range resp.Cookies() {
		if c.Name != sessionCookieName {
			continue
		}
		found = true
		if c.Secure {
			t.Error("session cookie is marked Secure, plain-HTTP clients will drop it")
		}
		if !c.HttpOnly {
			t.Error("session cookie is not HttpOnly")
		}
	}
	if !found {
		t.Fatalf("sign-up set no %q cookie", sessionCookieName)
	}
}

// TestSignUpValidation rejects malformed registrations with inline field
// errors.
func TestSignUpValidation(t *testing.T) {
	ts, client, _ := newTestEnv(t)

	tests := []struct {
		name string
		req  map[string]string
	}{
		{"bad email", map[string]string{"email": "not-an-email", "firstName": "A", "lastName": "B", "password": "longenough"}},
		{"missing name", map[string]string{"email": "a@example.com", "firstName": "", "lastName": "B", "password": "longenough"}},
		{"short password", map[string]string{"email": "a@example.com", "firstName": "A", "lastName": "B", "password": "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/auth/signup", tt.req)
			if status != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (%v)", status, body)
			}
			if _, ok := body["fieldErrors"]; !ok {
				t.Errorf("response %v has no fieldErrors", body)
			}
		})
	}
}

// TestSignUpDuplicateEmail reports a conflict when the email is already
// registered, case-insensitively.
func TestSignUpDuplicateEmail(t *testing.T) {
	ts, client, _ := newTestEnv(t)
	signUp(t, client, ts.URL, "alex@example.com")

	status, _ := doJSON(t, newTestClient(t), http.MethodPost, ts.URL+"/api/v1/auth/signup", map[string]string{
		"email":     "ALEX@example.com",
		"firstName": "Other",
		"lastName":  "Person",
		"password":  "different1",
	})
	if status != http.StatusConflict {
		t.Fatalf("duplicate sign-up returned %d, want 409", status)
	}
}

// TestSignInWrongCredentials answers identically for an unknown email and a
// wrong password.
func TestSignInWrongCredentials(t *testing.T) {
	ts, client, _ := newTestEnv(t)
	signUp(t, client, ts.URL, "alex@example.com")

	for _, req := range []map[string]string{
		{"email": "nobody@example.com", "password": "squats4life"},
		{"email": "alex@example.com", "password": "wrong password"},
	} {
		status, body := doJSON(t, newTestClient(t), http.MethodPost, ts.URL+"/api/v1/auth/signin", req)
		if status != http.StatusUnauthorized {
			t.Fatalf("sign-in %v returned %d, want 401", req, status)
		}
		if body["error"] != "email or password is incorrect" {
			t.Errorf("error = %v, want the shared credentials message", body["error"])
		}
	}
}

// TestSignOut clears the session so protected routes reject the client again.
func TestSignOut(t *testing.T) {
	ts, client, _ := newTestEnv(t)
	signUp(t, client, ts.URL, "alex@example.com")

	if status, _ := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/auth/signout", nil); status != http.StatusOK {
		t.Fatalf("sign-out returned %d", status)
	}
	if status, _ := doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/auth/me", nil); status != http.StatusUnauthorized {
		t.Fatalf("me after sign-out returned %d, want 401", status)
	}
}

// TestRequireAccount rejects anonymous access to the protected surface.
func TestRequireAccount(t *testing.T) {
	ts, client, _ := newTestEnv(t)

	status, _ := doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/sessions", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("anonymous list returned %d, want 401", status)
	}
}
