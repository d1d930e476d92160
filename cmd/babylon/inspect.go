package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/percy-raskova/babylon-sub001/internal/persistence"
)

func newInspectCmd() *cobra.Command {
	var (
		dbPath string
		runID  string
		tick   uint64
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect persisted runs in a simulation database",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := persistence.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			if runID != "" {
				st, err := db.LoadSnapshot(runID, tick)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(),
					"run %s tick %d: %d classes, %d territories, %d relations, %d contradictions\ndigest %s\n",
					runID, st.Tick, len(st.Classes), len(st.Territories),
					len(st.Relations), len(st.Contradictions), st.Digest())
				return nil
			}

			runs, err := db.ListRuns()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tSEED\tCREATED\tLAST TICK\tEVENTS\tOUTCOME")
			for _, r := range runs {
				outcome := r.Outcome
				if outcome == "" {
					outcome = "-"
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%d\t%s\n",
					r.ID, r.Seed, r.CreatedAt, r.LastTick, r.Events, outcome)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "babylon.db", "SQLite database path")
	cmd.Flags().StringVar(&runID, "run", "", "inspect a specific run's snapshot")
	cmd.Flags().Uint64Var(&tick, "tick", 0, "snapshot tick to load (with --run)")
	return cmd
}
