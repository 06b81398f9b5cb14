package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal("songsms", "err", err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "songsms",
		Usage: "Song and playlist microservices",
		Commands: []*cli.Command{
			serviceCommand("auth", "Run the authentication service", runAuth),
			serviceCommand("songs", "Run the songs and playlists service", runSongs),
			serviceCommand("download", "Run the audio file service", runDownload),
			serviceCommand("gateway", "Run the API gateway", runGateway),
			migrateCommand(),
		},
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "env-file",
			Aliases: []string{"e"},
			Usage:   "Path to a dotenv file loaded before reading the environment",
			Value:   ".env",
		},
		&cli.StringFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "Listen port (overrides PORT)",
		},
	}
}

func serviceCommand(name, usage string, run func(ctx context.Context, cmd *cli.Command) error) *cli.Command {
	return &cli.Command{
		Name:   name,
		Usage:  usage,
		Flags:  commonFlags(),
		Action: run,
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create the database schema and optionally seed users and songs",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:  "seed",
				Usage: "JSON file with users and songs to insert",
			},
		),
		Action: runMigrate,
	}
}
