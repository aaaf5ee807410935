package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/mattn/go-isatty"
)

var red = color.New(color.FgRed).SprintFunc()

func fatal(msg interface{}) {
	var s string
	switch msg := msg.(type) {
	case string:
		s = msg
	case error:
		s = msg.Error()
	default:
		s = fmt.Sprintf("%v", msg)
	}
	fmt.Fprintf(os.Stderr, "%s\n", red(s))
	os.Exit(1)
}

func isTerminalIO() bool {
	stdout := os.Stdout.Fd()
	return isatty.IsTerminal(stdout) || isatty.IsCygwinTerminal(stdout)
}

var outputFormatsCompletion = []string{"table", "text", "json"}

func checkOutputFormat(format string) (string, error) {
	format = strings.ToLower(format)
	for _, f := range outputFormatsCompletion {
		if f == format {
			return format, nil
		}
	}
	return "", fmt.Errorf("unknown output format: %s", format)
}

func (a *app) writeJSON(w io.Writer, v any) error {
	var (
		out []byte
		err error
	)
	if a.noColor() {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = prettyjson.Marshal(v)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
