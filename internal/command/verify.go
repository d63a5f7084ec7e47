package command

import (
	"fmt"
	"strings"

	"github.com/grufelous/bakker/internal/cli"
	"github.com/grufelous/bakker/internal/storage"
)

// VerifyCommand re-hashes every stored object and reports the broken ones.
type VerifyCommand struct{}

func (c *VerifyCommand) Name() string {
	return "verify"
}

func (c *VerifyCommand) Usage() string {
	return "verify [--path <dir>]"
}

func (c *VerifyCommand) Description() string {
	return "Check stored objects against their checksums"
}

func (c *VerifyCommand) DetailedDescription() string {
	return `Read every object referenced by any checkpoint, re-hash it, and report
objects that are missing or no longer match their recorded checksum.
Supports --path to use a storage directory other than the configured one.`
}

func (c *VerifyCommand) Aliases() []string {
	return nil
}

func (c *VerifyCommand) Short() string {
	return ""
}

func (c *VerifyCommand) Run(ctx *cli.Context) error {
	st, err := storageFor(ctx)
	if err != nil {
		return err
	}

	checks, err := st.Verify()
	if err != nil {
		return err
	}

	broken := 0
	for _, check := range checks {
		switch check.Status {
		case storage.ObjectMissing:
			broken++
			fmt.Printf("missing  %s  referenced by %s\n", check.Checksum, strings.Join(check.Checkpoints, ", "))
		case storage.ObjectDamaged:
			broken++
			fmt.Printf("damaged  %s  referenced by %s\n", check.Checksum, strings.Join(check.Checkpoints, ", "))
		}
	}
	if broken > 0 {
		return fmt.Errorf("%d of %d objects are missing or damaged", broken, len(checks))
	}

	fmt.Printf("All %d objects verified.\n", len(checks))
	return nil
}

func init() {
	cli.RegisterCommand(cli.ApplyMiddlewares(&VerifyCommand{}, cli.WithInvocationLog()))
}
