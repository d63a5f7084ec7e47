package command

import (
	"fmt"

	"github.com/grufelous/bakker/internal/cli"
)

// ListCommand prints the stored checkpoints, oldest first.
type ListCommand struct{}

func (c *ListCommand) Name() string {
	return "list"
}

func (c *ListCommand) Usage() string {
	return "list [--path <dir>]"
}

func (c *ListCommand) Description() string {
	return "List stored checkpoints"
}

func (c *ListCommand) DetailedDescription() string {
	return `List every checkpoint in storage with its checksum, creation time, and
name, oldest first.
Supports --path to use a storage directory other than the configured one.`
}

func (c *ListCommand) Aliases() []string {
	return []string{"ls"}
}

func (c *ListCommand) Short() string {
	return "l"
}

func (c *ListCommand) Run(ctx *cli.Context) error {
	st, err := storageFor(ctx)
	if err != nil {
		return err
	}

	metas, err := st.Metas()
	if err != nil {
		return err
	}
	if len(metas) == 0 {
		fmt.Println("No checkpoints found.")
		return nil
	}

	for _, m := range metas {
		name := m.Name
		if name == "" {
			name = "-"
		}
		fmt.Printf("%s  %s  %s\n", m.Checksum, m.Time.Format("2006-01-02 15:04:05"), name)
	}
	return nil
}

func init() {
	cli.RegisterCommand(cli.ApplyMiddlewares(&ListCommand{}, cli.WithInvocationLog()))
}
