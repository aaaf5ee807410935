package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cloudcmds/lox/image"
	"github.com/spf13/cobra"
)

func newAsmCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "asm [file]",
		Short: "Assemble a listing into a chunk image",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, name, err := a.loadChunk(cmd, args)
			if err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				if len(args) == 0 {
					return fmt.Errorf("--out is required when reading from --code or --stdin")
				}
				out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + imageExt
			}
			img, err := image.WriteFile(out, c, name)
			if err != nil {
				return err
			}
			a.log.Info().Str("id", img.ID).Str("path", out).Int("code_bytes", c.Len()).Msg("wrote image")
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", img.ID, out)
			return nil
		},
	}
	cmd.Flags().StringP("out", "o", "", "output path (default: input with .loxc extension)")
	return cmd
}
