// Package gateway is the single entry point in front of the services.
package gateway

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/eduard-w/songsMS/internal/config"
	"github.com/eduard-w/songsMS/internal/discovery"
	"github.com/eduard-w/songsMS/internal/logging"
	"github.com/eduard-w/songsMS/internal/web"
)

const (
	correlationHeader = "X-Correlation-Id"

	// DefaultMaxBodyBytes leaves room for a 64MB upload plus multipart framing.
	DefaultMaxBodyBytes = 65 << 20
)

type Options struct {
	AllowedOrigin string
	MaxBodyBytes  int64
}

func NewRouter(locator discovery.Locator, logger *log.Logger, opts Options) chi.Router {
	proxy := NewProxy(locator, logger)
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}

	r := chi.NewRouter()
	r.Use(corsMiddleware(opts.AllowedOrigin))
	r.Use(middleware.RequestID)
	r.Use(correlationMiddleware)
	r.Use(middleware.RealIP)
	r.Use(logging.Requests(logger))
	r.Use(middleware.Recoverer)
	r.Use(bodySizeLimitMiddleware(opts.MaxBodyBytes))

	r.Get("/health", web.Health("gateway"))

	auth := proxy.To(config.ServiceAuth)
	songs := proxy.To(config.ServiceSongs)
	download := proxy.To(config.ServiceDownload)

	r.Handle("/auth", auth)
	r.Handle("/auth/*", auth)

	r.Handle("/songs", songs)
	r.Handle("/songs/*", songs)
	r.Handle("/songLists", songs)
	r.Handle("/songLists/*", songs)

	r.Handle("/download/*", download)

	return r
}

// correlationMiddleware tags each request with an id that the services
// receive and the client gets back.
func correlationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(correlationHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(correlationHeader, id)
		}
		w.Header().Set(correlationHeader, id)
		next.ServeHTTP(w, r)
	})
}

func bodySizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				web.WriteJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

func corsMiddleware(allowedOrigin string) func(http.Handler) http.Handler {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Accept")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Expose-Headers", "Location, "+correlationHeader)

			if strings.ToUpper(r.Method) == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
