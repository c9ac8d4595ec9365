// Package main provides the entry point for the stmt-csv CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"fjacquet/stmt-csv/cmd/categorize"
	"fjacquet/stmt-csv/cmd/root"
	"fjacquet/stmt-csv/internal/config"
)

func init() {
	// Environment first, so LOG_LEVEL and STMT_* from .env are visible when
	// the configuration is read.
	_, _ = config.LoadEnv()

	root.Cmd.AddCommand(categorize.Cmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := root.Cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
