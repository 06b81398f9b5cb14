package songs

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/eduard-w/songsMS/internal/apperr"
	"github.com/eduard-w/songsMS/internal/web"
)

func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request) {
	mediaType, err := web.Negotiate(r.Header.Get("Accept"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	all, err := s.songs.ListSongs(r.Context())
	if err != nil {
		s.fail(w, r, storeError(err))
		return
	}

	if mediaType == web.MediaXML {
		_ = web.Encode(w, http.StatusOK, mediaType, songsXML{Songs: all})
		return
	}
	_ = web.Encode(w, http.StatusOK, mediaType, all)
}

func (s *Server) handleGetSong(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	song, err := s.songs.GetSong(r.Context(), id)
	if err != nil {
		s.fail(w, r, storeError(err))
		return
	}

	mediaType, err := web.Negotiate(r.Header.Get("Accept"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if mediaType == web.MediaXML {
		_ = web.Encode(w, http.StatusOK, mediaType, songXML{Song: song})
		return
	}
	_ = web.Encode(w, http.StatusOK, mediaType, song)
}

func (s *Server) handleCreateSong(w http.ResponseWriter, r *http.Request) {
	var body SongPayload
	if err := decodeJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	if body.ID != nil {
		s.fail(w, r, apperr.BadRequest("song IDs are not to be manually assigned"))
		return
	}
	if body.Title == nil || strings.TrimSpace(*body.Title) == "" {
		s.fail(w, r, apperr.BadRequest("property 'title' must be provided"))
		return
	}

	song := Song{
		Title:    strings.TrimSpace(*body.Title),
		Artist:   body.Artist,
		Label:    body.Label,
		Released: body.Released,
	}
	id, err := s.songs.CreateSong(r.Context(), song)
	if err != nil {
		s.fail(w, r, storeError(err))
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/songs/%d", id))
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleUpdateSong(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var body SongPayload
	if err := decodeJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	if body.ID == nil || *body.ID == 0 || *body.ID != id {
		s.fail(w, r, apperr.BadRequest("song id must be provided and match the path"))
		return
	}
	if body.Title == nil || strings.TrimSpace(*body.Title) == "" {
		s.fail(w, r, apperr.BadRequest("property 'title' must be provided"))
		return
	}

	song := Song{
		ID:       id,
		Title:    strings.TrimSpace(*body.Title),
		Artist:   body.Artist,
		Label:    body.Label,
		Released: body.Released,
	}
	if err := s.songs.UpdateSong(r.Context(), song); err != nil {
		s.fail(w, r, storeError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteSong(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.songs.DeleteSong(r.Context(), id); err != nil {
		s.fail(w, r, storeError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
