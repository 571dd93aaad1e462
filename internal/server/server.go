// Package server exposes the training log over HTTP: account sign-up and
// sign-in backed by cookie sessions, training session CRUD with date
// filtering and pagination, and a server-side row editor workflow for
// building session forms.
package server

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/claude/replog/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

// Options configures a Server.
type Options struct {
	SessionSecret string
	BcryptCost    int
	PageSize      int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    storage.Store
	accounts storage.Accounts
	cookies  *sessions.CookieStore
	log      *slog.Logger
	opts     Options
	router   chi.Router

	draftsMu sync.Mutex
	drafts   map[uuid.UUID]*draft
}

// New creates a new Server with all routes configured.
func New(store storage.Store, accounts storage.Accounts, opts Options, log *slog.Logger) *Server {
	cookies := sessions.NewCookieStore([]byte(opts.SessionSecret))
	cookies.Options.HttpOnly = true
	cookies.Options.SameSite = http.SameSiteLaxMode
	// The store defaults to Secure cookies; the server is reached over plain
	// HTTP or a tsnet tailnet, where such a cookie would never be sent back.
	cookies.Options.Secure = false

	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}

	s := &Server{
		store:    store,
		accounts: accounts,
		cookies:  cookies,
		log:      log,
		opts:     opts,
		router:   chi.NewRouter(),
		drafts:   make(map[uuid.UUID]*draft),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/signup", s.handleSignUp)
		r.Post("/auth/signin", s.handleSignIn)
		r.Post("/auth/signout", s.handleSignOut)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAccount)

			r.Get("/auth/me", s.handleMe)

			r.Get("/sessions", s.handleListSessions)
			r.Post("/sessions", s.handleCreateSession)
			r.Get("/sessions/stats", s.handleSessionStats)
			r.Get("/sessions/{id}", s.handleGetSession)
			r.Put("/sessions/{id}", s.handleUpdateSession)
			r.Delete("/sessions/{id}", s.handleDeleteSession)

			r.Post("/editor", s.handleNewDraft)
			r.Get("/editor/{draft}", s.handleGetDraft)
			r.Post("/editor/{draft}/rows", s.handleDraftRowOp)
			r.Put("/editor/{draft}/rows/{row}/sets", s.handleDraftSetsChanged)
			r.Post("/editor/{draft}/save", s.handleDraftSave)
			r.Delete("/editor/{draft}", s.handleDiscardDraft)
		})
	})
}
