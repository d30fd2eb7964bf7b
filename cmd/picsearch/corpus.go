package main

import (
	"fmt"

	"github.com/hyperjump/picsearch/internal/corpus"
	"github.com/spf13/cobra"
)

func newCorpusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Inspect and convert photo embedding files",
	}
	cmd.AddCommand(newCorpusInfoCmd())
	cmd.AddCommand(newCorpusConvertCmd())
	return cmd
}

func newCorpusInfoCmd() *cobra.Command {
	var sample int
	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Show size, dimensions and format of an embedding file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := corpus.Load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "File:       %s\n", args[0])
			fmt.Fprintf(out, "Format:     %s\n", corpus.FormatFromPath(args[0]))
			fmt.Fprintf(out, "Photos:     %d\n", c.Len())
			fmt.Fprintf(out, "Dimensions: %d\n", c.Dimensions())
			for i := 0; i < sample && i < c.Len(); i++ {
				fmt.Fprintf(out, "  %d\t%s\n", i, c.Name(i))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&sample, "sample", "n", 5, "number of photo names to list")
	return cmd
}

func newCorpusConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Rewrite an embedding file in another format (chosen by extension)",
		Example: `  picsearch corpus convert unsplash.msgpack unsplash.db
  picsearch corpus convert unsplash.sqlite unsplash.msgpack`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := corpus.Load(args[0])
			if err != nil {
				return err
			}
			if err := corpus.Save(args[1], c); err != nil {
				return fmt.Errorf("write %s: %w", args[1], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d photos (%s) to %s\n", c.Len(), corpus.FormatFromPath(args[1]), args[1])
			return nil
		},
	}
}
