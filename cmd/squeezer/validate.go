package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gucorpling/squeezer/internal/validator"
	"github.com/gucorpling/squeezer/pkg/codec"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check documents for structural problems",
	Long: `Checks that documents are well formed. Input mode (default) verifies that
scratch descriptors resolve; --output verifies a transformed document carries
no scratch annotations and that every scaffold has exactly two ends.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := validator.Input
		if out, _ := cmd.Flags().GetBool("output"); out {
			mode = validator.Output
		}

		failed := 0
		for _, path := range args {
			doc, err := readDocument(path, codec.FormatJSON)
			if err != nil {
				return err
			}
			if err := validator.ValidateDocument(doc, mode); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d documents are invalid", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("output", false, "Validate as transformed output")
}
