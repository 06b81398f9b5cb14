package songs

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrSongNotFound     = errors.New("song not found")
	ErrPlaylistNotFound = errors.New("playlist not found")
)

type SongStore interface {
	ListSongs(ctx context.Context) ([]Song, error)
	GetSong(ctx context.Context, id int) (Song, error)
	CreateSong(ctx context.Context, s Song) (int, error)
	UpdateSong(ctx context.Context, s Song) error
	DeleteSong(ctx context.Context, id int) error
}

type PlaylistStore interface {
	ListPlaylists(ctx context.Context, ownerID string) ([]Playlist, error)
	GetPlaylist(ctx context.Context, id int) (Playlist, error)
	CreatePlaylist(ctx context.Context, pl Playlist) (int, error)
	UpdatePlaylist(ctx context.Context, pl Playlist) error
	DeletePlaylist(ctx context.Context, id int) error
}

// DB defines the interface for database operations.
// It is implemented by *pgxpool.Pool and can be mocked for testing.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Postgres implements SongStore and PlaylistStore.
type Postgres struct {
	db DB
}

func NewPostgres(db DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) ListSongs(ctx context.Context) ([]Song, error) {
	rows, err := p.db.Query(ctx, `
		SELECT id, title, artist, label, released
		FROM songs
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	defer rows.Close()

	out := []Song{}
	for rows.Next() {
		var s Song
		if err := rows.Scan(&s.ID, &s.Title, &s.Artist, &s.Label, &s.Released); err != nil {
			return nil, fmt.Errorf("list songs scan: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list songs rows: %w", err)
	}
	return out, nil
}

func (p *Postgres) GetSong(ctx context.Context, id int) (Song, error) {
	var s Song
	err := p.db.QueryRow(ctx, `
		SELECT id, title, artist, label, released
		FROM songs
		WHERE id = $1
	`, id).Scan(&s.ID, &s.Title, &s.Artist, &s.Label, &s.Released)
	if errors.Is(err, pgx.ErrNoRows) {
		return Song{}, ErrSongNotFound
	}
	if err != nil {
		return Song{}, fmt.Errorf("get song %d: %w", id, err)
	}
	return s, nil
}

func (p *Postgres) CreateSong(ctx context.Context, s Song) (int, error) {
	var id int
	err := p.db.QueryRow(ctx, `
		INSERT INTO songs (title, artist, label, released)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, s.Title, s.Artist, s.Label, s.Released).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create song: %w", err)
	}
	return id, nil
}

func (p *Postgres) UpdateSong(ctx context.Context, s Song) error {
	tag, err := p.db.Exec(ctx, `
		UPDATE songs
		SET title = $2, artist = $3, label = $4, released = $5
		WHERE id = $1
	`, s.ID, s.Title, s.Artist, s.Label, s.Released)
	if err != nil {
		return fmt.Errorf("update song %d: %w", s.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSongNotFound
	}
	return nil
}

func (p *Postgres) DeleteSong(ctx context.Context, id int) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM songs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete song %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSongNotFound
	}
	return nil
}

func (p *Postgres) ListPlaylists(ctx context.Context, ownerID string) ([]Playlist, error) {
	rows, err := p.db.Query(ctx, `
		SELECT id, owner_id, name, is_private
		FROM song_lists
		WHERE owner_id = $1
		ORDER BY id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}

	lists := []Playlist{}
	for rows.Next() {
		pl := Playlist{Songs: []Song{}}
		if err := rows.Scan(&pl.ListID, &pl.OwnerID, &pl.Name, &pl.IsPrivate); err != nil {
			rows.Close()
			return nil, fmt.Errorf("list playlists scan: %w", err)
		}
		lists = append(lists, pl)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list playlists rows: %w", err)
	}
	if len(lists) == 0 {
		return lists, nil
	}

	ids := make([]int, len(lists))
	index := make(map[int]int, len(lists))
	for i, pl := range lists {
		ids[i] = pl.ListID
		index[pl.ListID] = i
	}

	entries, err := p.db.Query(ctx, `
		SELECT ls.list_id, s.id, s.title, s.artist, s.label, s.released
		FROM song_list_songs ls
		JOIN songs s ON s.id = ls.song_id
		WHERE ls.list_id = ANY($1)
		ORDER BY ls.list_id, ls.position
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("list playlist songs: %w", err)
	}
	defer entries.Close()

	for entries.Next() {
		var listID int
		var s Song
		if err := entries.Scan(&listID, &s.ID, &s.Title, &s.Artist, &s.Label, &s.Released); err != nil {
			return nil, fmt.Errorf("list playlist songs scan: %w", err)
		}
		i := index[listID]
		lists[i].Songs = append(lists[i].Songs, s)
	}
	if err := entries.Err(); err != nil {
		return nil, fmt.Errorf("list playlist songs rows: %w", err)
	}
	return lists, nil
}

func (p *Postgres) GetPlaylist(ctx context.Context, id int) (Playlist, error) {
	pl := Playlist{Songs: []Song{}}
	err := p.db.QueryRow(ctx, `
		SELECT id, owner_id, name, is_private
		FROM song_lists
		WHERE id = $1
	`, id).Scan(&pl.ListID, &pl.OwnerID, &pl.Name, &pl.IsPrivate)
	if errors.Is(err, pgx.ErrNoRows) {
		return Playlist{}, ErrPlaylistNotFound
	}
	if err != nil {
		return Playlist{}, fmt.Errorf("get playlist %d: %w", id, err)
	}

	rows, err := p.db.Query(ctx, `
		SELECT s.id, s.title, s.artist, s.label, s.released
		FROM song_list_songs ls
		JOIN songs s ON s.id = ls.song_id
		WHERE ls.list_id = $1
		ORDER BY ls.position
	`, id)
	if err != nil {
		return Playlist{}, fmt.Errorf("get playlist %d songs: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var s Song
		if err := rows.Scan(&s.ID, &s.Title, &s.Artist, &s.Label, &s.Released); err != nil {
			return Playlist{}, fmt.Errorf("get playlist %d songs scan: %w", id, err)
		}
		pl.Songs = append(pl.Songs, s)
	}
	if err := rows.Err(); err != nil {
		return Playlist{}, fmt.Errorf("get playlist %d songs rows: %w", id, err)
	}
	return pl, nil
}

func (p *Postgres) CreatePlaylist(ctx context.Context, pl Playlist) (id int, err error) {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("create playlist: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	err = tx.QueryRow(ctx, `
		INSERT INTO song_lists (owner_id, name, is_private)
		VALUES ($1, $2, $3)
		RETURNING id
	`, pl.OwnerID, pl.Name, pl.IsPrivate).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create playlist: %w", err)
	}

	if err = insertEntries(ctx, tx, id, pl.Songs); err != nil {
		return 0, err
	}
	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("create playlist: commit: %w", err)
	}
	return id, nil
}

func (p *Postgres) UpdatePlaylist(ctx context.Context, pl Playlist) (err error) {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("update playlist: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx, `
		UPDATE song_lists
		SET name = $2, is_private = $3
		WHERE id = $1
	`, pl.ListID, pl.Name, pl.IsPrivate)
	if err != nil {
		return fmt.Errorf("update playlist %d: %w", pl.ListID, err)
	}
	if tag.RowsAffected() == 0 {
		err = ErrPlaylistNotFound
		return err
	}

	if _, err = tx.Exec(ctx, `DELETE FROM song_list_songs WHERE list_id = $1`, pl.ListID); err != nil {
		return fmt.Errorf("update playlist %d: clear songs: %w", pl.ListID, err)
	}
	if err = insertEntries(ctx, tx, pl.ListID, pl.Songs); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("update playlist %d: commit: %w", pl.ListID, err)
	}
	return nil
}

func (p *Postgres) DeletePlaylist(ctx context.Context, id int) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM song_lists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete playlist %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlaylistNotFound
	}
	return nil
}

func insertEntries(ctx context.Context, tx pgx.Tx, listID int, songs []Song) error {
	if len(songs) == 0 {
		return nil
	}
	ids := make([]int, len(songs))
	for i, s := range songs {
		ids[i] = s.ID
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO song_list_songs (list_id, position, song_id)
		SELECT $1, t.ord - 1, t.song_id
		FROM unnest($2::int[]) WITH ORDINALITY AS t(song_id, ord)
	`, listID, ids)
	if err != nil {
		return fmt.Errorf("playlist %d: insert songs: %w", listID, err)
	}
	return nil
}

func AutoMigrate(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS songs (
          id       SERIAL PRIMARY KEY,
          title    TEXT NOT NULL,
          artist   TEXT NOT NULL DEFAULT '',
          label    TEXT NOT NULL DEFAULT '',
          released INT NOT NULL DEFAULT 0
      )
    `); err != nil {
		return fmt.Errorf("migrate songs: %w", err)
	}

	if _, err := db.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS song_lists (
          id         SERIAL PRIMARY KEY,
          owner_id   TEXT NOT NULL,
          name       TEXT NOT NULL,
          is_private BOOLEAN NOT NULL DEFAULT FALSE
      )
    `); err != nil {
		return fmt.Errorf("migrate song_lists: %w", err)
	}

	if _, err := db.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS song_list_songs (
          list_id  INT NOT NULL REFERENCES song_lists(id) ON DELETE CASCADE,
          position INT NOT NULL,
          song_id  INT NOT NULL REFERENCES songs(id) ON DELETE CASCADE,
          PRIMARY KEY (list_id, position)
      )
    `); err != nil {
		return fmt.Errorf("migrate song_list_songs: %w", err)
	}

	if _, err := db.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_song_lists_owner ON song_lists(owner_id)`); err != nil {
		return fmt.Errorf("migrate song_lists index: %w", err)
	}
	return nil
}
