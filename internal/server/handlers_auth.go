package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/claude/replog/internal/models"
	"github.com/claude/replog/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

type signUpRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if err := models.ValidateSignUp(req.Email, req.FirstName, req.LastName, req.Password); err != nil {
		s.writeStoreError(w, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.opts.BcryptCost)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	account := &models.Account{
		Email:        req.Email,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: string(hash),
	}
	id, err := s.accounts.CreateAccount(r.Context(), account)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	account.ID = id

	if err := s.signIn(w, r, account); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	account, err := s.accounts.GetAccountByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.rejectCredentials(w)
			return
		}
		s.writeStoreError(w, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)) != nil {
		s.rejectCredentials(w)
		return
	}

	if err := s.signIn(w, r, account); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// rejectCredentials responds identically for unknown emails and wrong
// passwords so sign-in cannot be used to probe for accounts.
func (s *Server) rejectCredentials(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "email or password is incorrect"})
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request, account *models.Account) error {
	sess, _ := s.cookies.New(r, sessionCookieName)
	sess.Values["account_id"] = account.ID.String()
	return sess.Save(r, w)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	sess, err := s.cookies.Get(r, sessionCookieName)
	if err == nil {
		delete(sess.Values, "account_id")
		sess.Options.MaxAge = -1
		if err := sess.Save(r, w); err != nil {
			s.log.Warn("clearing session", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := mustAccountID(w, r)
	if !ok {
		return
	}
	account, err := s.accounts.GetAccount(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}
