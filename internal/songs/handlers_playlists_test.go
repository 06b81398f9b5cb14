package songs

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/eduard-w/songsMS/internal/authclient"
	"github.com/eduard-w/songsMS/internal/logging"
)

type testEnv struct {
	songs *MockSongStore
	lists *MockPlaylistStore
	h     http.Handler
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	songs := new(MockSongStore)
	lists := new(MockPlaylistStore)
	srv := NewServer(songs, lists, newResolver(), nil, logging.Discard(), false)
	t.Cleanup(func() {
		songs.AssertExpectations(t)
		lists.AssertExpectations(t)
	})
	return &testEnv{songs: songs, lists: lists, h: srv.Router()}
}

func (e *testEnv) do(method, path, token, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.h.ServeHTTP(w, req)
	return w
}

var (
	privateList = Playlist{ListID: 4, OwnerID: "mmuster", Name: "Maxime's Private", IsPrivate: true, Songs: []Song{catalogue[0]}}
	publicList  = Playlist{ListID: 5, OwnerID: "mmuster", Name: "Maxime's Public", IsPrivate: false, Songs: []Song{catalogue[1]}}
)

func TestGetPlaylistVisibility(t *testing.T) {
	tests := []struct {
		name  string
		token string
		list  Playlist
		want  int
	}{
		{"owner reads private", tokenMuster, privateList, http.StatusOK},
		{"stranger reads private", tokenSchuler, privateList, http.StatusForbidden},
		{"stranger reads public", tokenSchuler, publicList, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setup(t)
			env.lists.On("GetPlaylist", mock.Anything, tt.list.ListID).Return(tt.list, nil)

			w := env.do(http.MethodGet, "/songLists/"+itoa(tt.list.ListID), tt.token, "", "Accept", "application/json")
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				var got Playlist
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Equal(t, tt.list, got)
			}
		})
	}
}

func TestGetPlaylistNegotiation(t *testing.T) {
	env := setup(t)
	env.lists.On("GetPlaylist", mock.Anything, 4).Return(privateList, nil)

	w := env.do(http.MethodGet, "/songLists/4", tokenMuster, "", "Accept", "application/xml")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<songList><listId>4</listId><ownerId>mmuster</ownerId>")
	assert.Contains(t, w.Body.String(), "<songs><song><id>1</id><title>MacArthur Park</title>")

	w = env.do(http.MethodGet, "/songLists/4", tokenMuster, "", "Accept", "text/html")
	assert.Equal(t, http.StatusNotAcceptable, w.Code)

	w = env.do(http.MethodGet, "/songLists/4", tokenMuster, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPlaylistErrors(t *testing.T) {
	env := setup(t)
	env.lists.On("GetPlaylist", mock.Anything, 99).Return(Playlist{}, ErrPlaylistNotFound)
	env.lists.On("GetPlaylist", mock.Anything, 7).Return(Playlist{}, errors.New("db down"))

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/songLists/4", "", "", "Accept", "application/json").Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/songLists/4", "bogus", "", "Accept", "application/json").Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/songLists/99", tokenMuster, "", "Accept", "application/json").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/songLists/abc", tokenMuster, "", "Accept", "application/json").Code)

	w := env.do(http.MethodGet, "/songLists/7", tokenMuster, "", "Accept", "application/json")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error", w.Body.String())
}

func TestListPlaylistsByUser(t *testing.T) {
	tests := []struct {
		name  string
		token string
		user  string
		want  int
		lists []Playlist
	}{
		{"own lists", tokenMuster, "mmuster", http.StatusOK, []Playlist{privateList, publicList}},
		{"other user sees public only", tokenSchuler, "mmuster", http.StatusOK, []Playlist{publicList}},
		{"unknown user", tokenMuster, "ghost", http.StatusNotFound, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setup(t)
			if tt.want == http.StatusOK {
				env.lists.On("ListPlaylists", mock.Anything, tt.user).
					Return([]Playlist{privateList, publicList}, nil)
			}

			w := env.do(http.MethodGet, "/songLists?userId="+tt.user, tt.token, "", "Accept", "application/json")
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				var got []Playlist
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Equal(t, tt.lists, got)
			}
		})
	}
}

func TestListPlaylistsXML(t *testing.T) {
	env := setup(t)
	env.lists.On("ListPlaylists", mock.Anything, "mmuster").Return([]Playlist{publicList}, nil)

	w := env.do(http.MethodGet, "/songLists?userId=mmuster", tokenSchuler, "", "Accept", "application/xml")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<songLists><songList><listId>5</listId>")
}

func TestListPlaylistsMissingUser(t *testing.T) {
	env := setup(t)
	w := env.do(http.MethodGet, "/songLists", tokenMuster, "", "Accept", "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePlaylist(t *testing.T) {
	env := setup(t)
	env.songs.On("ListSongs", mock.Anything).Return(catalogue, nil)
	want := Playlist{OwnerID: "eschuler", Name: "Elena's Mix", IsPrivate: true, Songs: []Song{catalogue[0], catalogue[2]}}
	env.lists.On("CreatePlaylist", mock.Anything, want).Return(11, nil)

	body := `{"ownerId":"mmuster","name":"Elena's Mix","isPrivate":true,"songs":[` +
		songJSON(catalogue[0]) + `,` + songJSON(catalogue[2]) + `]}`
	w := env.do(http.MethodPost, "/songLists", tokenSchuler, body)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/songLists/11", w.Header().Get("Location"))
}

func TestCreatePlaylistRejects(t *testing.T) {
	tampered := catalogue[1]
	tampered.Title = "Afternoon Delight (Remix)"

	tests := []struct {
		name    string
		body    string
		catalog bool
		msg     string
	}{
		{"listId supplied", `{"listId":3,"name":"x"}`, false, msgListIDAssigned},
		{"name missing", `{"isPrivate":false}`, false, msgNameRequired},
		{"unknown song", `{"name":"x","songs":[` + songJSON(tampered) + `]}`, true, msgInvalidSongs},
		{"bad json", `{"name":`, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setup(t)
			if tt.catalog {
				env.songs.On("ListSongs", mock.Anything).Return(catalogue, nil)
			}

			w := env.do(http.MethodPost, "/songLists", tokenMuster, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, w.Body.String())
			}
			env.lists.AssertNotCalled(t, "CreatePlaylist", mock.Anything, mock.Anything)
		})
	}
}

func TestUpdatePlaylist(t *testing.T) {
	env := setup(t)
	env.lists.On("GetPlaylist", mock.Anything, 4).Return(privateList, nil)
	env.songs.On("ListSongs", mock.Anything).Return(catalogue, nil)

	want := privateList
	want.Name = "Renamed"
	want.Songs = []Song{catalogue[0]}
	env.lists.On("UpdatePlaylist", mock.Anything, want).Return(nil)

	w := env.do(http.MethodPut, "/songLists/4", tokenMuster, `{"name":"Renamed","ownerId":"eschuler"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestUpdatePlaylistByStrangerIsForbidden(t *testing.T) {
	env := setup(t)
	env.lists.On("GetPlaylist", mock.Anything, 5).Return(publicList, nil)

	w := env.do(http.MethodPut, "/songLists/5", tokenSchuler, `{"name":"Mine now"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	env.lists.AssertNotCalled(t, "UpdatePlaylist", mock.Anything, mock.Anything)
}

func TestUpdatePlaylistChecks(t *testing.T) {
	t.Run("media type before token", func(t *testing.T) {
		env := setup(t)
		req := httptest.NewRequest(http.MethodPut, "/songLists/4", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "text/plain")
		w := httptest.NewRecorder()
		env.h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})

	t.Run("unknown list", func(t *testing.T) {
		env := setup(t)
		env.lists.On("GetPlaylist", mock.Anything, 42).Return(Playlist{}, ErrPlaylistNotFound)
		w := env.do(http.MethodPut, "/songLists/42", tokenMuster, `{"name":"x"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("listId mismatch", func(t *testing.T) {
		env := setup(t)
		env.lists.On("GetPlaylist", mock.Anything, 4).Return(privateList, nil)
		w := env.do(http.MethodPut, "/songLists/4", tokenMuster, `{"listId":5}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid songs", func(t *testing.T) {
		env := setup(t)
		env.lists.On("GetPlaylist", mock.Anything, 4).Return(privateList, nil)
		env.songs.On("ListSongs", mock.Anything).Return(catalogue[:1], nil)
		w := env.do(http.MethodPut, "/songLists/4", tokenMuster, `{"songs":[`+songJSON(catalogue[2])+`]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, msgInvalidSongs, w.Body.String())
	})
}

func TestDeletePlaylist(t *testing.T) {
	env := setup(t)
	env.lists.On("GetPlaylist", mock.Anything, 4).Return(privateList, nil)
	env.lists.On("DeletePlaylist", mock.Anything, 4).Return(nil)

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodDelete, "/songLists/4", tokenSchuler, "").Code)
	assert.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, "/songLists/4", tokenMuster, "").Code)
	env.lists.AssertNumberOfCalls(t, "DeletePlaylist", 1)
}

func TestAuthServiceOutage(t *testing.T) {
	resolver := newResolver()
	resolver.err = authclient.ErrUpstreamUnavailable
	srv := NewServer(new(MockSongStore), new(MockPlaylistStore), resolver, nil, logging.Discard(), false)

	req := httptest.NewRequest(http.MethodGet, "/songLists/4", nil)
	req.Header.Set("Authorization", tokenMuster)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func songJSON(s Song) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func itoa(i int) string {
	b, _ := json.Marshal(i)
	return string(b)
}
