package gateway

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/eduard-w/songsMS/internal/discovery"
	"github.com/eduard-w/songsMS/internal/web"
)

// Proxy forwards requests to services found through a locator. The address
// is resolved on every request so re-registered services are picked up.
type Proxy struct {
	locator discovery.Locator
	log     *log.Logger

	mu      sync.Mutex
	proxies map[string]*httputil.ReverseProxy
}

func NewProxy(locator discovery.Locator, logger *log.Logger) *Proxy {
	return &Proxy{
		locator: locator,
		log:     logger,
		proxies: make(map[string]*httputil.ReverseProxy),
	}
}

// To returns a handler forwarding to the named service.
func (p *Proxy) To(service string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		base, err := p.locator.Resolve(r.Context(), service)
		if err != nil {
			p.log.Error("resolve service", "service", service, "err", err)
			writeUnavailable(w)
			return
		}
		rp, err := p.reverseProxy(base)
		if err != nil {
			p.log.Error("invalid service URL", "service", service, "url", base, "err", err)
			writeUnavailable(w)
			return
		}
		rp.ServeHTTP(w, r)
	})
}

func (p *Proxy) reverseProxy(base string) (*httputil.ReverseProxy, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if rp, ok := p.proxies[base]; ok {
		return rp, nil
	}

	u, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	rp := httputil.NewSingleHostReverseProxy(u)

	origDirector := rp.Director
	rp.Director = func(req *http.Request) {
		origDirector(req)
		req.Header.Set("X-Forwarded-Host", req.Host)
		req.Header.Set("X-Forwarded-Proto", "http")
	}
	rp.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		p.log.Error("proxy error", "target", base, "err", err)
		writeUnavailable(w)
	}

	p.proxies[base] = rp
	return rp, nil
}

func writeUnavailable(w http.ResponseWriter) {
	web.WriteJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream service unavailable"})
}
