package songs

import (
	"encoding/json"
	"encoding/xml"
)

// Song is compared by value over all fields; a playlist entry must equal a
// song of the catalogue.
type Song struct {
	ID       int    `json:"id" xml:"id"`
	Title    string `json:"title" xml:"title"`
	Artist   string `json:"artist" xml:"artist"`
	Label    string `json:"label" xml:"label"`
	Released int    `json:"released" xml:"released"`
}

type Playlist struct {
	ListID    int    `json:"listId" xml:"listId"`
	OwnerID   string `json:"ownerId" xml:"ownerId"`
	Name      string `json:"name" xml:"name"`
	IsPrivate bool   `json:"isPrivate" xml:"isPrivate"`
	Songs     []Song `json:"songs" xml:"songs>song"`
}

// XML documents.
type (
	songXML struct {
		XMLName xml.Name `xml:"song"`
		Song
	}
	songsXML struct {
		XMLName xml.Name `xml:"songs"`
		Songs   []Song   `xml:"song"`
	}
	songListXML struct {
		XMLName xml.Name `xml:"songList"`
		Playlist
	}
	songListsXML struct {
		XMLName xml.Name   `xml:"songLists"`
		Lists   []Playlist `xml:"songList"`
	}
)

// Optional records whether a JSON field was present and whether it was null.
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Null = true
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// Present reports a non-null value.
func (o Optional[T]) Present() bool {
	return o.Set && !o.Null
}

// Some is a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// PlaylistPatch is a playlist payload. ownerId is never read from clients.
type PlaylistPatch struct {
	ListID    Optional[int]    `json:"listId"`
	Name      Optional[string] `json:"name"`
	IsPrivate Optional[bool]   `json:"isPrivate"`
	Songs     Optional[[]Song] `json:"songs"`
}

// SongPayload is a song as sent by clients.
type SongPayload struct {
	ID       *int    `json:"id"`
	Title    *string `json:"title"`
	Artist   string  `json:"artist"`
	Label    string  `json:"label"`
	Released int     `json:"released"`
}
