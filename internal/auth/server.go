// Package auth serves the session authority over HTTP.
package auth

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/eduard-w/songsMS/internal/apperr"
	"github.com/eduard-w/songsMS/internal/session"
	"github.com/eduard-w/songsMS/internal/web"
)

// maxLoginBody bounds a login payload; real ones are a few hundred bytes.
const maxLoginBody = 4 << 10

// Authority is the part of session.Authority the HTTP layer needs.
type Authority interface {
	Login(ctx context.Context, req session.LoginRequest) (string, error)
	Resolve(ctx context.Context, token string) (session.Identity, error)
	IdentityExists(ctx context.Context, userID string) (bool, error)
}

type Server struct {
	authority Authority
	log       *log.Logger
	debug     bool
}

func NewServer(authority Authority, logger *log.Logger, debugErrors bool) *Server {
	return &Server{authority: authority, log: logger, debug: debugErrors}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", web.Health("auth"))

	r.With(web.RequireContentType(web.MediaJSON)).Post("/auth", s.handleLogin)
	r.Get("/auth/user/{userId}", s.handleUserExists)
	r.Get("/auth/{token}", s.handleResolve)

	return r
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxLoginBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apperr.Write(w, apperr.New(apperr.KindTooLarge, "request body too large"), s.debug)
			return
		}
		apperr.Write(w, apperr.BadRequest("could not read request body"), s.debug)
		return
	}

	req, err := session.ParseLoginRequest(raw)
	if err != nil {
		apperr.Write(w, err, s.debug)
		return
	}

	token, err := s.authority.Login(r.Context(), req)
	if err != nil {
		if apperr.Is(err, apperr.KindInternal) {
			s.log.Error("login failed", "user", req.UserID, "err", err)
		}
		apperr.Write(w, err, s.debug)
		return
	}

	s.log.Debug("session issued", "user", req.UserID)
	web.WriteText(w, http.StatusOK, token)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	id, err := s.authority.Resolve(r.Context(), chi.URLParam(r, "token"))
	if errors.Is(err, session.ErrTokenNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("resolve token", "err", err)
		apperr.Write(w, apperr.Internal("resolve token", err), s.debug)
		return
	}
	web.WriteText(w, http.StatusOK, id.ID)
}

func (s *Server) handleUserExists(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	ok, err := s.authority.IdentityExists(r.Context(), userID)
	if err != nil {
		s.log.Error("user lookup", "user", userID, "err", err)
		apperr.Write(w, apperr.Internal("user lookup", err), s.debug)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}
