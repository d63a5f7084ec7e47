package command

import (
	"fmt"

	"github.com/grufelous/bakker/internal/cli"
	"github.com/grufelous/bakker/internal/config"
	"github.com/grufelous/bakker/internal/fs"
)

// ConfigCommand inspects and edits the configuration store.
type ConfigCommand struct{}

func (c *ConfigCommand) Name() string {
	return "config"
}

func (c *ConfigCommand) Usage() string {
	return "config list | get <key> | set <key> <value> | unset <key>"
}

func (c *ConfigCommand) Description() string {
	return "Inspect and edit configuration values"
}

func (c *ConfigCommand) DetailedDescription() string {
	return `Read or change configuration values addressed by dotted keys.
config list prints every key with its value.
config get <key> prints one value.
config set <key> <value> stores a value, creating intermediate sections.
config unset <key> removes a value and prunes sections it leaves empty.`
}

func (c *ConfigCommand) Aliases() []string {
	return nil
}

func (c *ConfigCommand) Short() string {
	return ""
}

func (c *ConfigCommand) Run(ctx *cli.Context) error {
	cfg, err := config.Open(fs.NewOSFS())
	if err != nil {
		return err
	}

	if len(ctx.Args) == 0 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	switch sub := ctx.Args[0]; sub {
	case "list":
		for _, item := range cfg.Items() {
			fmt.Println(item.Key + " = " + item.Value)
		}
		return nil
	case "get":
		if len(ctx.Args) != 2 {
			return fmt.Errorf("usage: config get <key>")
		}
		key := ctx.Args[1]
		value, ok := cfg.Get(key)
		if !ok {
			return fmt.Errorf("config does not contain key: %s", key)
		}
		fmt.Println(key + " = " + value)
		return nil
	case "set":
		if len(ctx.Args) != 3 {
			return fmt.Errorf("usage: config set <key> <value>")
		}
		return cfg.Set(ctx.Args[1], ctx.Args[2])
	case "unset":
		if len(ctx.Args) != 2 {
			return fmt.Errorf("usage: config unset <key>")
		}
		key := ctx.Args[1]
		if !cfg.Has(key) {
			fmt.Println("Config does not contain key:", key)
			return nil
		}
		return cfg.Unset(key)
	default:
		return fmt.Errorf("unknown config subcommand %q", sub)
	}
}

func init() {
	cli.RegisterCommand(cli.ApplyMiddlewares(&ConfigCommand{}, cli.WithInvocationLog()))
}
