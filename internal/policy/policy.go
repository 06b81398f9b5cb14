// Package policy decides who may see and change playlists.
package policy

import "net/http"

type Decision int

const (
	Allow Decision = iota
	Unauthenticated
	Forbidden
	NotFound
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not found"
	default:
		return "unknown"
	}
}

func (d Decision) Status() int {
	switch d {
	case Allow:
		return http.StatusOK
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Resource is the access-relevant view of a playlist.
type Resource struct {
	OwnerID   string
	IsPrivate bool
}

// Scope says which of a user's playlists a caller may list.
type Scope int

const (
	ScopeAll Scope = iota
	ScopePublic
)

func Authenticate(callerID string) Decision {
	if callerID == "" {
		return Unauthenticated
	}
	return Allow
}

// ListScope decides how much of targetID's playlists the caller sees.
func ListScope(callerID, targetID string, targetExists bool) (Scope, Decision) {
	if d := Authenticate(callerID); d != Allow {
		return ScopePublic, d
	}
	if !targetExists {
		return ScopePublic, NotFound
	}
	if callerID == targetID {
		return ScopeAll, Allow
	}
	return ScopePublic, Allow
}

func CanView(callerID string, r Resource) Decision {
	if d := Authenticate(callerID); d != Allow {
		return d
	}
	if r.IsPrivate && r.OwnerID != callerID {
		return Forbidden
	}
	return Allow
}

func CanModify(callerID string, r Resource) Decision {
	if d := Authenticate(callerID); d != Allow {
		return d
	}
	if r.OwnerID != callerID {
		return Forbidden
	}
	return Allow
}

// OwnerForCreate is the owner of a playlist the caller creates, whatever the
// payload claims.
func OwnerForCreate(callerID string) string {
	return callerID
}

// FilterVisible keeps the items CanView allows, preserving order.
func FilterVisible[T any](callerID string, items []T, resource func(T) Resource) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if CanView(callerID, resource(it)) == Allow {
			out = append(out, it)
		}
	}
	return out
}
