package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/AntonStoeckl/book-rental-go/library/shared/shell/config"
)

const usage = `usage: rental <command> [flags]

commands:
  worker       run the overdue scan and the session expiry on their schedules until interrupted
  action       dispatch one action and print its JSON output
  migrate      create the postgres schema
  add-book     add a book to the catalog
  remove-book  remove a book that was never borrowed
`

var errUsage = errors.New("invalid usage")

type commandFunc func(ctx context.Context, cfg config.Config, args []string) error

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	commands := map[string]commandFunc{
		"worker":      runWorker,
		"action":      runAction,
		"migrate":     runMigrate,
		"add-book":    runAddBook,
		"remove-book": runRemoveBook,
	}

	run, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Args[2:]); err != nil {
		stop()

		var failed actionFailedError
		if errors.As(err, &failed) {
			fmt.Fprintf(os.Stderr, "%d %v\n", failed.status, failed.err)
			os.Exit(1)
		}

		if errors.Is(err, errUsage) {
			os.Exit(2)
		}

		log.Fatalf("%s failed: %v", os.Args[1], err)
	}
}
