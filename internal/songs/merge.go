package songs

import (
	"strings"

	"github.com/eduard-w/songsMS/internal/apperr"
)

const (
	msgListIDAssigned = "list IDs are not to be manually assigned"
	msgNameRequired   = "property 'name' must be provided"
	msgInvalidSongs   = "invalid Song information, please match with database entries"
	msgListIDMismatch = "listId in payload does not match the path"
)

// Merge applies patch to the stored playlist existing, addressed by routeID.
// Absent and null fields keep their stored value; songs are replaced as a
// whole. The owner always comes from existing.
func Merge(existing Playlist, routeID int, patch PlaylistPatch) (Playlist, error) {
	if patch.ListID.Present() && patch.ListID.Value != routeID {
		return Playlist{}, apperr.BadRequest(msgListIDMismatch)
	}

	out := existing
	out.ListID = routeID
	out.Songs = copySongs(existing.Songs)

	if patch.Name.Present() {
		name := strings.TrimSpace(patch.Name.Value)
		if name == "" {
			return Playlist{}, apperr.BadRequest(msgNameRequired)
		}
		out.Name = name
	}
	if patch.IsPrivate.Present() {
		out.IsPrivate = patch.IsPrivate.Value
	}
	if patch.Songs.Present() {
		out.Songs = copySongs(patch.Songs.Value)
	}
	return out, nil
}

func copySongs(in []Song) []Song {
	out := make([]Song, len(in))
	copy(out, in)
	return out
}

// NewPlaylist builds the playlist a create payload describes, owned by
// ownerID.
func NewPlaylist(ownerID string, patch PlaylistPatch) (Playlist, error) {
	if patch.ListID.Present() {
		return Playlist{}, apperr.BadRequest(msgListIDAssigned)
	}
	name := strings.TrimSpace(patch.Name.Value)
	if !patch.Name.Present() || name == "" {
		return Playlist{}, apperr.BadRequest(msgNameRequired)
	}

	pl := Playlist{
		OwnerID:   ownerID,
		Name:      name,
		IsPrivate: patch.IsPrivate.Value,
		Songs:     []Song{},
	}
	if patch.Songs.Present() {
		pl.Songs = append(pl.Songs, patch.Songs.Value...)
	}
	return pl, nil
}

// ContainsAll reports whether every song of wanted equals a song of all.
func ContainsAll(all, wanted []Song) bool {
	known := make(map[Song]struct{}, len(all))
	for _, s := range all {
		known[s] = struct{}{}
	}
	for _, s := range wanted {
		if _, ok := known[s]; !ok {
			return false
		}
	}
	return true
}
