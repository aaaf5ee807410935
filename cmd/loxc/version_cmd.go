package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type versionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

func newVersionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := versionInfo{Version: version, Commit: commit, Date: date}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return a.writeJSON(cmd.OutOrStdout(), info)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loxc %s (%s, %s)\n", info.Version, info.Commit, info.Date)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print version as JSON")
	return cmd
}
