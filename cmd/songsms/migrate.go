package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urfave/cli/v3"

	"github.com/eduard-w/songsMS/internal/config"
	"github.com/eduard-w/songsMS/internal/session"
	"github.com/eduard-w/songsMS/internal/songs"
)

// Seed is the content of a --seed file.
type Seed struct {
	Users []session.User `json:"users"`
	Songs []songs.Song   `json:"songs"`
}

func loadSeed(path string) (Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed: %w", err)
	}
	var s Seed
	if err := json.Unmarshal(raw, &s); err != nil {
		return Seed{}, fmt.Errorf("parse seed %s: %w", path, err)
	}
	return s, nil
}

type userInserter interface {
	InsertUser(ctx context.Context, u session.User) error
}

// applySeed inserts the users (existing ids are kept) and, when the song
// catalogue is still empty, the songs.
func applySeed(ctx context.Context, seed Seed, users userInserter, catalogue songs.SongStore, logger *log.Logger) error {
	for _, u := range seed.Users {
		if err := users.InsertUser(ctx, u); err != nil {
			return err
		}
	}

	existing, err := catalogue.ListSongs(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Info("songs already present, skipping song seed", "count", len(existing))
		return nil
	}
	for _, s := range seed.Songs {
		s.ID = 0
		if _, err := catalogue.CreateSong(ctx, s); err != nil {
			return err
		}
	}
	logger.Info("seeded", "users", len(seed.Users), "songs", len(seed.Songs))
	return nil
}

func runMigrate(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := loadConfig(cmd, config.ServiceSongs)
	if err != nil {
		return err
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("pg: %w", err)
	}
	defer pool.Close()

	if err := session.AutoMigrate(ctx, pool); err != nil {
		return err
	}
	if err := songs.AutoMigrate(ctx, pool); err != nil {
		return err
	}
	logger.Info("schema ready")

	path := cmd.String("seed")
	if path == "" {
		return nil
	}
	seed, err := loadSeed(path)
	if err != nil {
		return err
	}
	return applySeed(ctx, seed, session.NewPostgresUserStore(pool), songs.NewPostgres(pool), logger)
}
