package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/percy-raskova/babylon-sub001/internal/hydrate"
)

func newGenerateCmd() *cobra.Command {
	var (
		seed        int64
		territories int
		output      string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a scenario snapshot from a seed",
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := hydrate.DefaultGenConfig()
			gen.Seed = seed
			gen.Territories = territories

			st := hydrate.Generate(gen)
			data, err := hydrate.Marshal(st)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				fmt.Fprintln(os.Stdout, string(data))
				return nil
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write scenario: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d classes, %d territories, digest %s)\n",
				output, len(st.Classes), len(st.Territories), st.Digest())
			return nil
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "generation seed")
	cmd.Flags().IntVar(&territories, "territories", 4, "number of peripheral territories")
	cmd.Flags().StringVar(&output, "out", "-", "output file (- for stdout)")
	return cmd
}
