package main

import (
	"fmt"
	"strconv"

	"github.com/cloudcmds/lox/internal/table"
	"github.com/spf13/cobra"
)

func newLinesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lines [file]",
		Short: "Show the compressed line table, or the line of one offset",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.loadChunk(cmd, args)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if cmd.Flags().Changed("offset") {
				offset, _ := cmd.Flags().GetInt("offset")
				line, err := c.Line(offset)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, line)
				return nil
			}
			var rows [][]string
			runs := c.LineRuns()
			for i, run := range runs {
				end := c.Len()
				if i+1 < len(runs) {
					end = runs[i+1].Offset
				}
				rows = append(rows, []string{
					strconv.Itoa(run.Line),
					strconv.Itoa(run.Offset),
					strconv.Itoa(end - run.Offset),
				})
			}
			table.NewTable(w).
				WithHeader([]string{"LINE", "OFFSET", "BYTES"}).
				WithColumnAlignment([]table.Alignment{table.AlignRight, table.AlignRight, table.AlignRight}).
				WithHeaderAlignment([]table.Alignment{table.AlignCenter, table.AlignCenter, table.AlignCenter}).
				WithRows(rows).
				Render()
			return nil
		},
	}
	cmd.Flags().Int("offset", 0, "print only the source line of this offset")
	return cmd
}
