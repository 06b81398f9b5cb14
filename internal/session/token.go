package session

import (
	"math/rand/v2"
	"sync"
)

const (
	TokenLength = 20
	// candidate characters are drawn from [0, charRange)
	charRange = 127
)

// TokenStore maps live tokens to the identity they were issued for.
type TokenStore interface {
	// Insert stores token unless it is already live and reports whether it did.
	Insert(token string, id Identity) bool
	Lookup(token string) (Identity, bool)
	Len() int
}

type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]Identity
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]Identity)}
}

func (m *MemoryStore) Insert(token string, id Identity) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.tokens[token]; taken {
		return false
	}
	m.tokens[token] = id
	return true
}

func (m *MemoryStore) Lookup(token string) (Identity, bool) {
	m.mu.RLock()
	id, ok := m.tokens[token]
	m.mu.RUnlock()
	return id, ok
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tokens)
}

// Generator builds tokens from a source of code points in [0, n).
type Generator struct {
	IntN func(n int) int
}

func NewGenerator() *Generator {
	return &Generator{IntN: rand.IntN}
}

// Token draws TokenLength characters, redrawing each one until it is an
// ASCII letter or digit.
func (g *Generator) Token() string {
	buf := make([]byte, TokenLength)
	for i := range buf {
		c := byte(g.IntN(charRange))
		for !isAlnum(c) {
			c = byte(g.IntN(charRange))
		}
		buf[i] = c
	}
	return string(buf)
}

func isAlnum(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z'
}

// IsToken reports whether s has the shape of an issued token.
func IsToken(s string) bool {
	if len(s) != TokenLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isAlnum(s[i]) {
			return false
		}
	}
	return true
}
