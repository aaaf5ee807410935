// Command loxc assembles, inspects and disassembles lox bytecode chunks.
package main

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fatal(err)
	}
}
