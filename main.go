package main

import (
	"fmt"
	"os"

	"github.com/careloop/glucoach/commands"
)

// main entry point to training, evaluation and policy comparison
func main() {
	rootCommand := commands.GetRootCommand()
	if err := rootCommand.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
