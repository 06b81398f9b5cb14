package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrUserNotFound = errors.New("user not found")

// Identity is the authenticated principal a token resolves to.
type Identity struct {
	ID     string
	Secret string
}

type User struct {
	UserID    string `json:"userId"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (u User) Identity() Identity {
	return Identity{ID: u.UserID, Secret: u.Password}
}

type UserStore interface {
	FindUser(ctx context.Context, userID string) (User, error)
}

// DB defines the interface for database operations.
// It is implemented by *pgxpool.Pool and can be mocked for testing.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresUserStore struct {
	db DB
}

func NewPostgresUserStore(db DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) FindUser(ctx context.Context, userID string) (User, error) {
	var u User
	err := s.db.QueryRow(ctx, `
		SELECT user_id, password, first_name, last_name
		FROM users
		WHERE user_id = $1
	`, userID).Scan(&u.UserID, &u.Password, &u.FirstName, &u.LastName)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("find user %s: %w", userID, err)
	}
	return u, nil
}

// InsertUser seeds a user; an existing user id is left untouched.
func (s *PostgresUserStore) InsertUser(ctx context.Context, u User) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO users (user_id, password, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO NOTHING
	`, u.UserID, u.Password, u.FirstName, u.LastName)
	if err != nil {
		return fmt.Errorf("insert user %s: %w", u.UserID, err)
	}
	return nil
}

func AutoMigrate(ctx context.Context, db DB) error {
	_, err := db.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS users (
          user_id    TEXT PRIMARY KEY,
          password   TEXT NOT NULL,
          first_name TEXT NOT NULL DEFAULT '',
          last_name  TEXT NOT NULL DEFAULT ''
      )
    `)
	if err != nil {
		return fmt.Errorf("migrate users: %w", err)
	}
	return nil
}
