package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gucorpling/squeezer/internal/adapters/file"
	"github.com/gucorpling/squeezer/pkg/adapters/memory"
	"github.com/gucorpling/squeezer/pkg/codec"
	"github.com/gucorpling/squeezer/pkg/ports"
	"github.com/gucorpling/squeezer/pkg/runner"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [file...]",
	Short: "Transform documents",
	Long: `Transforms the given document files ("-" reads stdin), or every document of
the configured store when no files are given.

A single file without --out is written to stdout. Otherwise results go to the
--out directory, or back into the store they came from.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntP("workers", "j", 4, "Documents transformed concurrently")
	runCmd.Flags().StringP("out", "o", "", "Directory to write transformed documents to")
	runCmd.Flags().StringP("format", "f", "json", "Output format (json or yaml)")
	runCmd.Flags().Bool("dry-run", false, "Transform without writing anything")
}

func runRun(cmd *cobra.Command, args []string) error {
	app, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer app.Close(cmd.Context())

	outDir, _ := cmd.Flags().GetString("out")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	formatName, _ := cmd.Flags().GetString("format")
	format, err := codec.ParseFormat(formatName)
	if err != nil {
		return err
	}

	eng, err := app.Engine()
	if err != nil {
		return err
	}

	// Single document to stdout.
	if len(args) == 1 && outDir == "" && !dryRun {
		doc, err := readDocument(args[0], format)
		if err != nil {
			return err
		}
		if _, err := eng.Transform(cmd.Context(), doc); err != nil {
			return err
		}
		return codec.Encode(cmd.OutOrStdout(), doc, format)
	}

	var source ports.DocumentStore
	if len(args) > 0 {
		mem := memory.NewStore()
		for _, path := range args {
			doc, err := readDocument(path, format)
			if err != nil {
				return err
			}
			if err := mem.Save(cmd.Context(), doc); err != nil {
				return err
			}
		}
		source = mem
	} else {
		source, err = app.Store()
		if err != nil {
			return err
		}
	}

	opts := []runner.Option{
		runner.WithLogger(app.Logger),
		runner.WithWorkers(app.Config.Workers),
		runner.WithSessionManager(app.Sessions(source)),
		runner.WithDryRun(dryRun),
	}
	if outDir != "" {
		opts = append(opts, runner.WithSink(file.New(outDir, format)))
	} else if len(args) > 0 && !dryRun {
		return fmt.Errorf("--out is required when transforming several files")
	}

	summary, err := runner.New(eng, source, opts...).Run(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "run %s: %d succeeded, %d failed in %s\n",
		summary.RunID, summary.Succeeded, summary.Failed, summary.Duration)
	for _, res := range summary.Failures() {
		fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %v\n", res.DocumentID, res.Err)
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d documents failed", summary.Failed, len(summary.Results))
	}
	return nil
}
