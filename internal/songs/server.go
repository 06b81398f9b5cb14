// Package songs serves the song catalogue and the users' playlists.
package songs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/eduard-w/songsMS/internal/apperr"
	"github.com/eduard-w/songsMS/internal/authclient"
	"github.com/eduard-w/songsMS/internal/policy"
	"github.com/eduard-w/songsMS/internal/web"
)

const eventChannel = "broadcast"

type Server struct {
	songs SongStore
	lists PlaylistStore
	auth  authclient.Resolver
	rdb   *redis.Client
	log   *log.Logger
	debug bool
}

func NewServer(songs SongStore, lists PlaylistStore, auth authclient.Resolver, rdb *redis.Client, logger *log.Logger, debugErrors bool) *Server {
	return &Server{
		songs: songs,
		lists: lists,
		auth:  auth,
		rdb:   rdb,
		log:   logger,
		debug: debugErrors,
	}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", web.Health("songs"))

	requireToken := authclient.RequireToken(s.auth, s.log)

	r.Group(func(r chi.Router) {
		r.Use(requireToken)

		r.Get("/songs", s.handleListSongs)
		r.Get("/songs/{id}", s.handleGetSong)
		r.Delete("/songs/{id}", s.handleDeleteSong)

		r.Get("/songLists", s.handleListPlaylists)
		r.Get("/songLists/{id}", s.handleGetPlaylist)
		r.Delete("/songLists/{id}", s.handleDeletePlaylist)
	})

	// the media type is checked before the token is resolved
	r.Group(func(r chi.Router) {
		r.Use(web.RequireContentType(web.MediaJSON))
		r.Use(requireToken)

		r.Post("/songs", s.handleCreateSong)
		r.Put("/songs/{id}", s.handleUpdateSong)

		r.Post("/songLists", s.handleCreatePlaylist)
		r.Put("/songLists/{id}", s.handleUpdatePlaylist)
	})

	return r
}

// fail writes err and logs it when it is not the client's fault.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if k := apperr.KindOf(err); k == apperr.KindInternal || k == apperr.KindUpstreamUnavailable {
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	apperr.Write(w, err, s.debug)
}

func (s *Server) publishEvent(ctx context.Context, event map[string]any) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		s.log.Printf("songs: marshal event: %v", err)
		return
	}
	if err := s.rdb.Publish(ctx, eventChannel, string(data)).Err(); err != nil {
		s.log.Printf("songs: publish event: %v", err)
	}
}

func callerID(r *http.Request) string {
	id, _ := authclient.UserIDFromContext(r.Context())
	return id
}

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0, apperr.BadRequest("id must be an integer")
	}
	return id, nil
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.BadRequest("invalid JSON body: " + err.Error())
	}
	return nil
}

func denied(d policy.Decision) error {
	switch d {
	case policy.Unauthenticated:
		return apperr.Unauthenticated("invalid token")
	case policy.Forbidden:
		return apperr.Forbidden("access to this song list is not permitted")
	case policy.NotFound:
		return apperr.NotFound("no such user")
	default:
		return apperr.Internal("unexpected decision "+d.String(), nil)
	}
}

func storeError(err error) error {
	switch {
	case errors.Is(err, ErrSongNotFound):
		return apperr.NotFound("song not found")
	case errors.Is(err, ErrPlaylistNotFound):
		return apperr.NotFound("song list not found")
	default:
		return apperr.Internal("database error", err)
	}
}
