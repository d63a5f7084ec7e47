package command

import (
	"fmt"
	"os"

	"github.com/grufelous/bakker/internal/checkpoint"
	"github.com/grufelous/bakker/internal/cli"
	"github.com/grufelous/bakker/internal/logging"
)

// CreateCommand checkpoints the current directory into storage.
type CreateCommand struct{}

func (c *CreateCommand) Name() string {
	return "create"
}

func (c *CreateCommand) Usage() string {
	return "create [--name|-n <name>] [--exclude <pattern>]... [--path <dir>]"
}

func (c *CreateCommand) Description() string {
	return "Checkpoint the current directory into storage"
}

func (c *CreateCommand) DetailedDescription() string {
	return `Scan the current directory, build a content-addressed checkpoint of its
tree, and store the checkpoint together with its file contents.
Supports -n / --name to label the checkpoint.
Supports --exclude to skip entries matching a gitignore-style pattern.
The flag may be repeated.
Supports --path to use a storage directory other than the configured one.`
}

func (c *CreateCommand) Aliases() []string {
	return nil
}

func (c *CreateCommand) Short() string {
	return "c"
}

func (c *CreateCommand) Run(ctx *cli.Context) error {
	name, _ := ctx.Flag("name", "n")

	srcPath, err := os.Getwd()
	if err != nil {
		return err
	}

	st, err := storageFor(ctx)
	if err != nil {
		return err
	}

	builder := checkpoint.NewTreeBuilder(st.Tree)
	builder.Log = logging.Component("checkpoint")
	builder.Exclude = ctx.FlagAll("exclude")

	cp, err := builder.Checkpoint(srcPath, name)
	if err != nil {
		return err
	}

	if err := st.Store(srcPath, cp); err != nil {
		return err
	}

	fmt.Println("Stored checkpoint:", cp.Meta().Encode())
	return nil
}

func init() {
	cli.RegisterCommand(cli.ApplyMiddlewares(&CreateCommand{}, cli.WithInvocationLog()))
}
