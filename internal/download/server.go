// Package download stores and serves the audio file of each song.
package download

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/eduard-w/songsMS/internal/apperr"
	"github.com/eduard-w/songsMS/internal/authclient"
	"github.com/eduard-w/songsMS/internal/web"
)

const (
	formField     = "file"
	audioMPEG     = "audio/mpeg"
	maxUploadSize = 64 << 20
)

type Server struct {
	blobs     BlobStore
	auth      authclient.Resolver
	log       *log.Logger
	debug     bool
	maxUpload int64
}

func NewServer(blobs BlobStore, auth authclient.Resolver, logger *log.Logger, debugErrors bool) *Server {
	return &Server{blobs: blobs, auth: auth, log: logger, debug: debugErrors, maxUpload: maxUploadSize}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", web.Health("download"))

	r.Group(func(r chi.Router) {
		r.Use(authclient.RequireToken(s.auth, s.log))
		r.Post("/download/{id}", s.handleUpload)
		r.Get("/download/{id}", s.handleDownload)
	})
	return r
}

func blobKey(id int) string {
	return "song-" + strconv.Itoa(id)
}

func (s *Server) songID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, apperr.BadRequest("id must be a positive integer")
	}
	return id, nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	apperr.Write(w, err, s.debug)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	id, err := s.songID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	file, header, err := r.FormFile(formField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, r, apperr.New(apperr.KindTooLarge, fmt.Sprintf("file exceeds %d bytes", s.maxUpload)))
			return
		}
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingFile) {
			s.fail(w, r, apperr.New(apperr.KindUnsupportedMediaType, "multipart field 'file' of type audio/mpeg required"))
			return
		}
		s.fail(w, r, apperr.BadRequest("invalid multipart body"))
		return
	}
	defer file.Close()

	mt, _, err := mime.ParseMediaType(header.Header.Get("Content-Type"))
	if err != nil || mt != audioMPEG {
		s.fail(w, r, apperr.New(apperr.KindUnsupportedMediaType, "file must be of type audio/mpeg"))
		return
	}

	if err := s.blobs.Save(r.Context(), blobKey(id), file); err != nil {
		s.fail(w, r, apperr.Internal("store file", err))
		return
	}

	s.log.Info("song file stored", "song", id, "bytes", header.Size)
	w.Header().Set("Location", fmt.Sprintf("/download/%d", id))
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id, err := s.songID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	key := blobKey(id)
	rc, err := s.blobs.Load(r.Context(), key)
	if errors.Is(err, ErrBlobNotFound) {
		s.fail(w, r, apperr.NotFound("no file for song "+strconv.Itoa(id)))
		return
	}
	if err != nil {
		s.fail(w, r, apperr.Internal("load file", err))
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", key))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		s.log.Warn("download interrupted", "song", id, "err", err)
	}
}
