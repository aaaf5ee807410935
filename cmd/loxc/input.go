package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudcmds/lox/asm"
	"github.com/cloudcmds/lox/bytecode"
	"github.com/cloudcmds/lox/image"
	"github.com/spf13/cobra"
)

// imageExt is the file extension of serialized chunk images.
const imageExt = ".loxc"

// loadChunk returns the chunk named by the command input. There are three
// possibilities:
//  1. --code <listing>
//  2. --stdin (read the listing from stdin)
//  3. path as args[0], either a listing or a .loxc image
func (a *app) loadChunk(cmd *cobra.Command, args []string) (*bytecode.Chunk, string, error) {
	codeSet := cmd.Flags().Changed("code") || a.v.GetString("code") != ""
	stdinSet := a.v.GetBool("stdin")
	pathSupplied := len(args) > 0 && args[0] != ""

	count := 0
	for _, set := range []bool{codeSet, stdinSet, pathSupplied} {
		if set {
			count++
		}
	}
	if count > 1 {
		return nil, "", errors.New("multiple input sources specified")
	}
	if count == 0 {
		return nil, "", errors.New("no input provided")
	}

	opts := []asm.Option{asm.WithLogger(a.log)}
	switch {
	case stdinSet:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, "", err
		}
		c, err := asm.Assemble(string(data), opts...)
		return c, "<stdin>", err
	case pathSupplied:
		path := args[0]
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if filepath.Ext(path) == imageExt {
			img, err := image.ReadFile(path)
			if err != nil {
				return nil, "", err
			}
			a.log.Debug().Str("id", img.ID).Str("path", path).Msg("loaded image")
			if img.Name != "" {
				name = img.Name
			}
			c, err := img.Chunk(bytecode.WithLogger(a.log))
			return c, name, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", err
		}
		c, err := asm.Assemble(string(data), opts...)
		return c, name, err
	default:
		c, err := asm.Assemble(a.v.GetString("code"), opts...)
		return c, "<code>", err
	}
}
