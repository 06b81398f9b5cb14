package songs

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockSongStore struct {
	mock.Mock
}

func (m *MockSongStore) ListSongs(ctx context.Context) ([]Song, error) {
	args := m.Called(ctx)
	return args.Get(0).([]Song), args.Error(1)
}

func (m *MockSongStore) GetSong(ctx context.Context, id int) (Song, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Song), args.Error(1)
}

func (m *MockSongStore) CreateSong(ctx context.Context, s Song) (int, error) {
	args := m.Called(ctx, s)
	return args.Int(0), args.Error(1)
}

func (m *MockSongStore) UpdateSong(ctx context.Context, s Song) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSongStore) DeleteSong(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

type MockPlaylistStore struct {
	mock.Mock
}

func (m *MockPlaylistStore) ListPlaylists(ctx context.Context, ownerID string) ([]Playlist, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]Playlist), args.Error(1)
}

func (m *MockPlaylistStore) GetPlaylist(ctx context.Context, id int) (Playlist, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Playlist), args.Error(1)
}

func (m *MockPlaylistStore) CreatePlaylist(ctx context.Context, pl Playlist) (int, error) {
	args := m.Called(ctx, pl)
	return args.Int(0), args.Error(1)
}

func (m *MockPlaylistStore) UpdatePlaylist(ctx context.Context, pl Playlist) error {
	return m.Called(ctx, pl).Error(0)
}

func (m *MockPlaylistStore) DeletePlaylist(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

// fakeResolver stands in for the auth service.
type fakeResolver struct {
	tokens map[string]string
	users  map[string]bool
	err    error
}

func (f fakeResolver) ResolveIdentityID(_ context.Context, token string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.tokens[token], nil
}

func (f fakeResolver) TokenIsValid(ctx context.Context, token string) (bool, error) {
	id, err := f.ResolveIdentityID(ctx, token)
	return id != "", err
}

func (f fakeResolver) IdentityMatches(ctx context.Context, token, candidateID string) (bool, error) {
	id, err := f.ResolveIdentityID(ctx, token)
	return id != "" && id == candidateID, err
}

func (f fakeResolver) IdentityExists(_ context.Context, userID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.users[userID], nil
}

const (
	tokenMuster  = "muster000000000token"
	tokenSchuler = "schuler00000000token"
)

func newResolver() fakeResolver {
	return fakeResolver{
		tokens: map[string]string{tokenMuster: "mmuster", tokenSchuler: "eschuler"},
		users:  map[string]bool{"mmuster": true, "eschuler": true},
	}
}

var catalogue = []Song{
	{ID: 1, Title: "MacArthur Park", Artist: "Richard Harris", Label: "Dunhill Records", Released: 1968},
	{ID: 2, Title: "Afternoon Delight", Artist: "Starland Vocal Band", Label: "Windsong", Released: 1976},
	{ID: 3, Title: "Muskrat Love", Artist: "Captain and Tennille", Label: "A&M", Released: 1976},
}
