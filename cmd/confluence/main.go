// Package main is the entry point for the confluence CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"apitools/internal/backend/confluence"
	"apitools/internal/cli"
	"apitools/internal/commands/confluencecmd"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dispatcher := cli.NewDispatcher(confluencecmd.Registry, confluence.NewFromConfig)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
