// Package discovery resolves logical service names to base URLs.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

var ErrUnknownService = errors.New("unknown service")

// Locator resolves a logical service name ("auth", "songs", ...) to a
// reachable base URL without a trailing slash.
type Locator interface {
	Resolve(ctx context.Context, name string) (string, error)
}

// StaticLocator serves a fixed address book.
type StaticLocator struct {
	mu       sync.RWMutex
	services map[string]string
}

func NewStaticLocator(services map[string]string) *StaticLocator {
	l := &StaticLocator{services: make(map[string]string, len(services))}
	for name, url := range services {
		l.Set(name, url)
	}
	return l
}

func (l *StaticLocator) Set(name, url string) {
	l.mu.Lock()
	l.services[name] = strings.TrimRight(url, "/")
	l.mu.Unlock()
}

func (l *StaticLocator) Resolve(_ context.Context, name string) (string, error) {
	l.mu.RLock()
	url, ok := l.services[name]
	l.mu.RUnlock()
	if !ok || url == "" {
		return "", fmt.Errorf("%w: %s", ErrUnknownService, name)
	}
	return url, nil
}

type servicesFile struct {
	Services map[string]string `toml:"services"`
}

// LoadStaticLocator builds a StaticLocator from defaults, overridden by the
// [services] table of the TOML file at path when that file exists.
func LoadStaticLocator(path string, defaults map[string]string) (*StaticLocator, error) {
	l := NewStaticLocator(defaults)
	if path == "" {
		return l, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("discovery: read %s: %w", path, err)
	}

	var f servicesFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("discovery: parse %s: %w", path, err)
	}
	for name, url := range f.Services {
		l.Set(name, url)
	}
	return l, nil
}
