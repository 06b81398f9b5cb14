package songs

import (
	"fmt"
	"net/http"

	"github.com/eduard-w/songsMS/internal/apperr"
	"github.com/eduard-w/songsMS/internal/policy"
	"github.com/eduard-w/songsMS/internal/web"
)

func resourceOf(pl Playlist) policy.Resource {
	return policy.Resource{OwnerID: pl.OwnerID, IsPrivate: pl.IsPrivate}
}

// handleListPlaylists lists the playlists of ?userId=, all of them for the
// owner and only the public ones for everybody else.
func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := callerID(r)

	target := r.URL.Query().Get("userId")
	if target == "" {
		s.fail(w, r, apperr.BadRequest("query parameter 'userId' must be provided"))
		return
	}

	exists, err := s.auth.IdentityExists(ctx, target)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	scope, d := policy.ListScope(caller, target, exists)
	if d != policy.Allow {
		s.fail(w, r, denied(d))
		return
	}

	lists, err := s.lists.ListPlaylists(ctx, target)
	if err != nil {
		s.fail(w, r, storeError(err))
		return
	}
	if scope == policy.ScopePublic {
		lists = policy.FilterVisible(caller, lists, resourceOf)
	}

	mediaType, err := web.Negotiate(r.Header.Get("Accept"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if mediaType == web.MediaXML {
		_ = web.Encode(w, http.StatusOK, mediaType, songListsXML{Lists: lists})
		return
	}
	_ = web.Encode(w, http.StatusOK, mediaType, lists)
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	pl, err := s.lists.GetPlaylist(r.Context(), id)
	if err != nil {
		s.fail(w, r, storeError(err))
		return
	}
	if d := policy.CanView(callerID(r), resourceOf(pl)); d != policy.Allow {
		s.fail(w, r, denied(d))
		return
	}

	mediaType, err := web.Negotiate(r.Header.Get("Accept"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if mediaType == web.MediaXML {
		_ = web.Encode(w, http.StatusOK, mediaType, songListXML{Playlist: pl})
		return
	}
	_ = web.Encode(w, http.StatusOK, mediaType, pl)
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := callerID(r)

	var patch PlaylistPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.fail(w, r, err)
		return
	}

	pl, err := NewPlaylist(policy.OwnerForCreate(caller), patch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.validateSongs(r, pl.Songs); err != nil {
		s.fail(w, r, err)
		return
	}

	id, err := s.lists.CreatePlaylist(ctx, pl)
	if err != nil {
		s.fail(w, r, storeError(err))
		return
	}

	s.publishEvent(ctx, map[string]any{
		"type":    "playlist.created",
		"listId":  id,
		"ownerId": pl.OwnerID,
	})

	w.Header().Set("Location", fmt.Sprintf("/songLists/%d", id))
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleUpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var patch PlaylistPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.fail(w, r, err)
		return
	}

	existing, err := s.lists.GetPlaylist(ctx, id)
	if err != nil {
		s.fail(w, r, storeError(err))
		return
	}
	if d := policy.CanModify(callerID(r), resourceOf(existing)); d != policy.Allow {
		s.fail(w, r, denied(d))
		return
	}

	merged, err := Merge(existing, id, patch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.validateSongs(r, merged.Songs); err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.lists.UpdatePlaylist(ctx, merged); err != nil {
		s.fail(w, r, storeError(err))
		return
	}

	s.publishEvent(ctx, map[string]any{
		"type":    "playlist.updated",
		"listId":  id,
		"ownerId": merged.OwnerID,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	existing, err := s.lists.GetPlaylist(ctx, id)
	if err != nil {
		s.fail(w, r, storeError(err))
		return
	}
	if d := policy.CanModify(callerID(r), resourceOf(existing)); d != policy.Allow {
		s.fail(w, r, denied(d))
		return
	}

	if err := s.lists.DeletePlaylist(ctx, id); err != nil {
		s.fail(w, r, storeError(err))
		return
	}

	s.publishEvent(ctx, map[string]any{
		"type":    "playlist.deleted",
		"listId":  id,
		"ownerId": existing.OwnerID,
	})
	w.WriteHeader(http.StatusNoContent)
}

// validateSongs checks every entry against the catalogue.
func (s *Server) validateSongs(r *http.Request, entries []Song) error {
	if len(entries) == 0 {
		return nil
	}
	all, err := s.songs.ListSongs(r.Context())
	if err != nil {
		return storeError(err)
	}
	if !ContainsAll(all, entries) {
		return apperr.BadRequest(msgInvalidSongs)
	}
	return nil
}
