package main

import (
	"os"

	"github.com/macrolabs/stompcheck/cli/commands"
)

func main() {
	os.Exit(commands.Execute())
}
