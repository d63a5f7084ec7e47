package cli_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/grufelous/bakker/internal/cli"
)

func TestParseContext_PositionalsAndFlags(t *testing.T) {
	ctx := cli.ParseContext([]string{"set", "--name", "nightly", "default.storage", "fs"})

	if want := []string{"set", "default.storage", "fs"}; !reflect.DeepEqual(ctx.Args, want) {
		t.Fatalf("args = %v, want %v", ctx.Args, want)
	}
	value, ok := ctx.Flag("name")
	if !ok || value != "nightly" {
		t.Fatalf("flag name = %q, %v", value, ok)
	}
}

func TestParseContext_EqualsForm(t *testing.T) {
	ctx := cli.ParseContext([]string{"--path=/tmp/backups", "--exclude=*.log"})

	if value, _ := ctx.Flag("path"); value != "/tmp/backups" {
		t.Fatalf("path = %q", value)
	}
	if value, _ := ctx.Flag("exclude"); value != "*.log" {
		t.Fatalf("exclude = %q", value)
	}
}

func TestParseContext_RepeatedFlag(t *testing.T) {
	ctx := cli.ParseContext([]string{"--exclude", "*.log", "--exclude", "build/", "--exclude=node_modules"})

	want := []string{"*.log", "build/", "node_modules"}
	if got := ctx.FlagAll("exclude"); !reflect.DeepEqual(got, want) {
		t.Fatalf("exclude = %v, want %v", got, want)
	}
	if value, _ := ctx.Flag("exclude"); value != "node_modules" {
		t.Fatalf("last exclude = %q", value)
	}
}

func TestParseContext_BareFlag(t *testing.T) {
	ctx := cli.ParseContext([]string{"--verbose", "--name", "x"})

	if !ctx.HasFlag("verbose") {
		t.Fatal("verbose not seen")
	}
	if value, ok := ctx.Flag("verbose"); !ok || value != "" {
		t.Fatalf("verbose = %q, %v", value, ok)
	}
}

func TestParseContext_TrailingFlagHasEmptyValue(t *testing.T) {
	ctx := cli.ParseContext([]string{"--identifier"})

	if value, ok := ctx.Flag("identifier"); !ok || value != "" {
		t.Fatalf("identifier = %q, %v", value, ok)
	}
}

func TestFlag_PrefersFirstListedName(t *testing.T) {
	ctx := cli.ParseContext([]string{"-n", "short"})

	value, ok := ctx.Flag("name", "n")
	if !ok || value != "short" {
		t.Fatalf("flag = %q, %v", value, ok)
	}
	if _, ok := ctx.Flag("missing"); ok {
		t.Fatal("missing flag reported as set")
	}
}

type stubCommand struct {
	ran bool
}

func (s *stubCommand) Name() string                { return "stub" }
func (s *stubCommand) Usage() string               { return "stub" }
func (s *stubCommand) Description() string         { return "stub command" }
func (s *stubCommand) DetailedDescription() string { return "stub command" }
func (s *stubCommand) Aliases() []string           { return nil }
func (s *stubCommand) Short() string               { return "" }
func (s *stubCommand) Run(ctx *cli.Context) error {
	s.ran = true
	return nil
}

func TestApplyMiddlewares_OrderAndDelegation(t *testing.T) {
	stub := &stubCommand{}
	boom := errors.New("boom")

	blocked := cli.ApplyMiddlewares(stub, func(cmd cli.Command) cli.Command {
		return &cli.WrappedCommand{Command: cmd, Wrap: func(ctx *cli.Context) error {
			return boom
		}}
	})
	if err := blocked.Run(&cli.Context{}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if stub.ran {
		t.Fatal("wrapped command ran despite blocking middleware")
	}
	if blocked.Name() != "stub" {
		t.Fatalf("name = %q, want stub", blocked.Name())
	}

	passthrough := &cli.WrappedCommand{Command: stub}
	if err := passthrough.Run(&cli.Context{}); err != nil {
		t.Fatalf("passthrough run: %v", err)
	}
	if !stub.ran {
		t.Fatal("wrapped command did not run")
	}
}
