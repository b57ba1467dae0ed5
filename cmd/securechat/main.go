package main

import (
	"fmt"
	"os"

	"securechat/cmd/securechat/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
