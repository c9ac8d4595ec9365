// Package root contains the root command for the application
package root

import (
	"context"
	"fmt"
	"time"

	"fjacquet/stmt-csv/internal/config"
	"fjacquet/stmt-csv/internal/container"
	"fjacquet/stmt-csv/internal/logging"
	"fjacquet/stmt-csv/internal/parsererror"
	"fjacquet/stmt-csv/internal/pipeline"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// ConfigEnvVar names the environment variable holding an explicit config file.
const ConfigEnvVar = "STMT_CONFIG"

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// AppContainer holds the wired dependencies once PersistentPreRunE ran.
	AppContainer *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "stmt-csv [output-name]",
		Short: "Merge card statement CSV exports into one categorized expense file.",
		Long: `stmt-csv reads every statement listed in the input manifest (or found in the
input directory), keeps the expense rows, assigns each one a category from the
keyword rule set and writes them, ordered by transaction date, to a single CSV.

The output is written to <output.directory>/<output-name>.csv; without an
argument the name is statement-YYYY-MM-DD.`,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		PersistentPreRunE: initialize,
		RunE:              runFunc,
	}
)

func initialize(cmd *cobra.Command, args []string) error {
	cfg, err := config.InitializeConfig(config.GetEnv(ConfigEnvVar, ""))
	if err != nil {
		return &parsererror.StartupError{Stage: "config", Err: err}
	}

	Log = config.ConfigureLoggingFromConfig(cfg)
	c, err := container.NewContainerWithLogger(cfg, logging.FromLogrus(Log))
	if err != nil {
		return &parsererror.StartupError{Stage: "wiring", Err: err}
	}
	AppContainer = c
	return nil
}

func runFunc(cmd *cobra.Command, args []string) error {
	if AppContainer == nil {
		return fmt.Errorf("container not initialized")
	}

	name := ""
	if len(args) == 1 {
		name = args[0]
	}

	result, err := Run(cmd.Context(), AppContainer, name, time.Now())
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d records to %s\n", len(result.Records), result.Output)
	return err
}

// Run executes one pipeline run writing to the output named name.
func Run(ctx context.Context, c *container.Container, name string, now time.Time) (*pipeline.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return c.NewDriver(name, now).Run(ctx)
}

// GetContainer returns the application container, or nil before
// initialization.
func GetContainer() *container.Container {
	return AppContainer
}
