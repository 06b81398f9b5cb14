// Package web holds the HTTP plumbing shared by the services.
package web

import (
	"encoding/json"
	"encoding/xml"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/eduard-w/songsMS/internal/apperr"
)

const (
	MediaJSON = "application/json"
	MediaXML  = "application/xml"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", MediaJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteText(w http.ResponseWriter, status int, s string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(s))
}

// Encode writes v in the negotiated media type.
func Encode(w http.ResponseWriter, status int, mediaType string, v any) error {
	if mediaType == MediaXML {
		w.Header().Set("Content-Type", MediaXML)
		w.WriteHeader(status)
		if _, err := w.Write([]byte(xml.Header)); err != nil {
			return err
		}
		return xml.NewEncoder(w).Encode(v)
	}
	w.Header().Set("Content-Type", MediaJSON)
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// offer is one candidate representation seen in an Accept header.
type offer struct {
	q     float64
	pos   int
	found bool
}

func (o *offer) set(q float64, pos int) {
	if !o.found || q > o.q {
		o.q, o.pos, o.found = q, pos, true
	}
}

// Negotiate picks JSON or XML from an Accept header. The type with the
// highest q wins and ties go to the one listed first. An explicit entry for
// a type overrides the wildcards (which stand for JSON), so q=0 refuses it.
func Negotiate(accept string) (string, error) {
	if strings.TrimSpace(accept) == "" {
		return "", apperr.BadRequest("missing Accept header")
	}

	var jsonExplicit, jsonWildcard, xmlExplicit offer
	for pos, part := range strings.Split(accept, ",") {
		mt, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		q := 1.0
		if raw, ok := params["q"]; ok {
			q, err = strconv.ParseFloat(raw, 64)
			if err != nil || q < 0 || q > 1 {
				continue
			}
		}
		switch mt {
		case MediaJSON:
			jsonExplicit.set(q, pos)
		case "*/*", "application/*":
			jsonWildcard.set(q, pos)
		case MediaXML:
			xmlExplicit.set(q, pos)
		}
	}

	jsonOffer := jsonExplicit
	if !jsonOffer.found {
		jsonOffer = jsonWildcard
	}

	switch {
	case jsonOffer.q > 0 && (jsonOffer.q > xmlExplicit.q || (jsonOffer.q == xmlExplicit.q && jsonOffer.pos < xmlExplicit.pos)):
		return MediaJSON, nil
	case xmlExplicit.q > 0:
		return MediaXML, nil
	default:
		return "", apperr.New(apperr.KindNotAcceptable, "supported media types: application/json, application/xml")
	}
}

// RequireContentType rejects requests whose body is not of mediaType,
// including requests without a body.
func RequireContentType(mediaType string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || !strings.EqualFold(mt, mediaType) {
				apperr.Write(w, apperr.New(apperr.KindUnsupportedMediaType, "content type must be "+mediaType), false)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Health answers liveness probes.
func Health(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"service": service,
		})
	}
}
