// Command listings manages a real-estate listing store from the shell.
package main

import (
	"os"
)

func main() {
	cli := NewCLI(os.Stdin, os.Stdout, os.Stderr)
	os.Exit(cli.Run(os.Args[1:]))
}
