package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/tasklist/internal/identityctl"
	"github.com/dmitrijs2005/tasklist/internal/logging"
	"github.com/dmitrijs2005/tasklist/internal/server"
	"github.com/dmitrijs2005/tasklist/internal/server/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	args := identityctl.CommandArgs(os.Args[1:])
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, identityctl.ErrUsage)
		return 2
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	logger, err := logging.New(os.Stderr, "warn", "text")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	app, err := server.NewAppWithLogger(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer app.Close()

	if err := identityctl.NewApp(app.Credentials(), os.Stdin, os.Stdout).Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
