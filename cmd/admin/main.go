package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/learnprogress/internal/admin"
	"github.com/dmitrijs2005/learnprogress/internal/logging"
	"github.com/dmitrijs2005/learnprogress/internal/server/config"
)

func main() {

	args := admin.SplitCommand(os.Args[1:])
	if args == nil {
		fmt.Fprintln(os.Stderr, admin.ErrUsage)
		os.Exit(2)
	}

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	app, err := admin.NewApp(ctx, cfg, os.Stdin, os.Stdout, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	err = app.Run(ctx, args)
	_ = app.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

}
