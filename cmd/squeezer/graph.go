package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gucorpling/squeezer/internal/presentation/graph"
	"github.com/gucorpling/squeezer/pkg/codec"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <file>",
	Short: "Export a document as a Mermaid diagram",
	Long:  `Reads a document and prints a Mermaid flowchart (graph TD) of its nodes and relations. With --transform the document is rewritten first.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readDocument(args[0], codec.FormatJSON)
		if err != nil {
			return err
		}

		if transform, _ := cmd.Flags().GetBool("transform"); transform {
			app, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer app.Close(cmd.Context())
			eng, err := app.Engine()
			if err != nil {
				return err
			}
			if _, err := eng.Transform(cmd.Context(), doc); err != nil {
				return err
			}
		}

		hideTokens, _ := cmd.Flags().GetBool("no-tokens")
		only, _ := cmd.Flags().GetString("only-layer")
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(doc.Graph, &graph.Options{
			HideTokens: hideTokens,
			Layer:      only,
		}))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("transform", false, "Transform the document before drawing it")
	graphCmd.Flags().Bool("no-tokens", false, "Leave token nodes out")
	graphCmd.Flags().String("only-layer", "", "Only draw nodes of this layer")
}
