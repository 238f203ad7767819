package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gucorpling/squeezer/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "squeezer",
	Short: "Squeezer rewrites discourse graphs into their final RST form",
	Long: `Squeezer collapses duplicate constituents, materializes secondary edges and
signals from scratch annotations, and marks signaled relations.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	pf := rootCmd.PersistentFlags()
	pf.StringP("config", "c", "", "Path to a squeezer.yaml config file")
	pf.String("layer", "", "Restrict deduplication to this layer")
	pf.String("dedup", "after", "When to deduplicate: before, after or off")
	pf.Bool("strict", false, "Reject duplicate groups whose bare and annotated counts differ")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-format", "text", "Log format (text or json)")
	pf.String("store", "file", "Document store: file, redis or memory")
	pf.String("store-dir", ".squeezer/documents", "Directory of the file store")
	pf.Bool("trace", false, "Export OpenTelemetry spans to stderr")
}

// bootstrap loads configuration for cmd and returns a ready App.
func bootstrap(cmd *cobra.Command) (*cli.App, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	return cli.Bootstrap(cmd.Context(), cfgPath, cmd.Flags())
}
