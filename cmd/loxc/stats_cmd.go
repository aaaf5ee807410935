package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [file]",
		Short: "Show chunk statistics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.loadChunk(cmd, args)
			if err != nil {
				return err
			}
			if err := c.Validate(); err != nil {
				a.log.Warn().Err(err).Msg("line table invariants violated")
			}
			s := c.Stats()
			w := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return a.writeJSON(w, s)
			}
			fmt.Fprintf(w, "code bytes:    %d\n", s.CodeBytes)
			fmt.Fprintf(w, "instructions:  %d\n", s.Instructions)
			fmt.Fprintf(w, "line runs:     %d\n", s.LineRuns)
			fmt.Fprintf(w, "constants:     %d\n", s.Constants)
			fmt.Fprintf(w, "short loads:   %d\n", s.ShortLoads)
			fmt.Fprintf(w, "long loads:    %d\n", s.LongLoads)
			fmt.Fprintf(w, "bytes per run: %.2f\n", s.BytesPerRun)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print statistics as JSON")
	return cmd
}
