package cli

var commandRegistry = map[string]Command{}

// RegisterCommand adds a command to the registry under its name, its
// aliases, and its short form.
func RegisterCommand(cmd Command) {
	commandRegistry[cmd.Name()] = cmd
	for _, alias := range cmd.Aliases() {
		commandRegistry[alias] = cmd
	}
	if short := cmd.Short(); short != "" {
		commandRegistry[short] = cmd
	}
}

// GetCommand resolves a name, alias, or short form to a command.
func GetCommand(name string) (Command, bool) {
	cmd, ok := commandRegistry[name]
	return cmd, ok
}

// AllCommands returns every registered command once, regardless of how many
// names it is reachable under.
func AllCommands() []Command {
	seen := map[string]bool{}
	var cmds []Command
	for _, cmd := range commandRegistry {
		if seen[cmd.Name()] {
			continue
		}
		seen[cmd.Name()] = true
		cmds = append(cmds, cmd)
	}
	return cmds
}
