// Package main provides the entry point for the jira-digest CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/festy23/jira_digest/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
