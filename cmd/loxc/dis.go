package main

import (
	"github.com/cloudcmds/lox/dis"
	"github.com/cloudcmds/lox/value"
	"github.com/spf13/cobra"
)

type instructionJSON struct {
	Offset   int          `json:"offset"`
	Line     int          `json:"line"`
	Opcode   string       `json:"opcode"`
	Operands []int        `json:"operands,omitempty"`
	Index    *int         `json:"constant_index,omitempty"`
	Constant *value.Value `json:"constant,omitempty"`
}

func jsonInstructions(instructions []dis.Instruction) []instructionJSON {
	out := make([]instructionJSON, 0, len(instructions))
	for _, instr := range instructions {
		j := instructionJSON{
			Offset: instr.Offset,
			Line:   instr.Line,
			Opcode: instr.Name,
		}
		for _, b := range instr.Operands {
			j.Operands = append(j.Operands, int(b))
		}
		if instr.IsConstantLoad() {
			index, constant := instr.ConstantIndex, instr.Constant
			j.Index = &index
			j.Constant = &constant
		}
		out = append(out, j)
	}
	return out
}

func newDisCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dis [file]",
		Short: "Disassemble a chunk",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := checkOutputFormat(a.v.GetString("output"))
			if err != nil {
				return err
			}
			c, name, err := a.loadChunk(cmd, args)
			if err != nil {
				return err
			}
			instructions, err := dis.Disassemble(c)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			switch format {
			case "json":
				return a.writeJSON(w, jsonInstructions(instructions))
			case "text":
				dis.Fprint(w, name, instructions)
			default:
				dis.Print(instructions, w)
			}
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "table", "output format (table, text, json)")
	a.v.BindPFlag("output", cmd.Flags().Lookup("output"))
	cmd.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return outputFormatsCompletion, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}
