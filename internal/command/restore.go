package command

import (
	"errors"
	"fmt"
	"os"

	"github.com/grufelous/bakker/internal/cli"
	"github.com/grufelous/bakker/internal/storage"
)

// RestoreCommand materializes a stored checkpoint into the current directory.
type RestoreCommand struct{}

func (c *RestoreCommand) Name() string {
	return "restore"
}

func (c *RestoreCommand) Usage() string {
	return "restore --identifier|-i <identifier> [--path <dir>]"
}

func (c *RestoreCommand) Description() string {
	return "Restore a stored checkpoint into the current directory"
}

func (c *RestoreCommand) DetailedDescription() string {
	return `Resolve a checkpoint by checksum prefix first, then by name, and write
its tree into the current directory. Existing files are overwritten,
other files are left alone.
Requires -i / --identifier to select the checkpoint.
Supports --path to use a storage directory other than the configured one.`
}

func (c *RestoreCommand) Aliases() []string {
	return nil
}

func (c *RestoreCommand) Short() string {
	return "r"
}

func (c *RestoreCommand) Run(ctx *cli.Context) error {
	identifier, ok := ctx.Flag("identifier", "i")
	if !ok || identifier == "" {
		return fmt.Errorf("missing option --identifier / -i")
	}

	dstPath, err := os.Getwd()
	if err != nil {
		return err
	}

	st, err := storageFor(ctx)
	if err != nil {
		return err
	}

	err = st.RetrieveByChecksum(dstPath, identifier)
	if errors.Is(err, storage.ErrNotFound) {
		err = st.RetrieveByName(dstPath, identifier)
	}

	var ambiguous *storage.NoUniqueMatchError
	switch {
	case errors.As(err, &ambiguous):
		return fmt.Errorf("multiple checkpoints matching identifier: %s", identifier)
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("no checkpoints matching identifier: %s", identifier)
	case err != nil:
		return err
	}

	fmt.Println("Restored checkpoint:", identifier)
	return nil
}

func init() {
	cli.RegisterCommand(cli.ApplyMiddlewares(&RestoreCommand{}, cli.WithInvocationLog()))
}
