package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/oktsec/rtmsign/cmd/rtmsign/commands"
)

func main() {
	if err := commands.NewRoot().Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprint(os.Stderr, "error: ")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
