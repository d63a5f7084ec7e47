package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/grufelous/bakker/internal/cli"
	_ "github.com/grufelous/bakker/internal/command"
	"github.com/grufelous/bakker/internal/logging"
)

func main() {
	debug := os.Getenv("BAKKER_DEBUG") != ""
	args := make([]string, 0, len(os.Args)-1)
	for _, arg := range os.Args[1:] {
		if arg == "--debug" {
			debug = true
			continue
		}
		args = append(args, arg)
	}
	logging.Init(debug)

	if len(args) == 0 {
		fmt.Println("Usage: bakker <command> [args...]")
		fmt.Println("Available commands:")
		cmds := cli.AllCommands()
		sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name() < cmds[j].Name() })
		for _, cmd := range cmds {
			fmt.Printf("  %s: %s\n", cmd.Name(), cmd.Description())
		}
		os.Exit(0)
	}

	cmdName := args[0]
	cmd, ok := cli.GetCommand(cmdName)
	if !ok {
		fmt.Printf("Unknown command: %s\n", cmdName)
		os.Exit(1)
	}

	ctx := cli.ParseContext(args[1:])

	if err := cmd.Run(ctx); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
