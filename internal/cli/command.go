package cli

import "strings"

// Command is a single cli command.
type Command interface {
	// Name returns the name of the command, used to identify and invoke it.
	Name() string
	// Usage returns the usage syntax of the command.
	Usage() string
	// Description returns a one-line description of the command.
	Description() string
	// DetailedDescription returns a longer description shown by help.
	DetailedDescription() string
	// Aliases returns alternate names the command is registered under.
	Aliases() []string
	// Short returns a single-letter shorthand, or "" for none.
	Short() string
	// Run executes the command.
	Run(ctx *Context) error
}

// Context carries the parsed arguments of one invocation.
type Context struct {
	// Args holds the positional arguments in order of appearance.
	Args []string
	// Flags maps a flag name to every value given under it.
	Flags map[string][]string
}

// ParseContext splits raw arguments into positionals and flags. A flag is
// written --name value, --name=value, or -n value; a flag followed by
// another flag or by nothing carries the empty value. Flags may repeat.
func ParseContext(args []string) *Context {
	ctx := &Context{Flags: map[string][]string{}}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			ctx.Args = append(ctx.Args, arg)
			continue
		}
		name := strings.TrimLeft(arg, "-")
		value := ""
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			name, value = name[:eq], name[eq+1:]
		} else if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			value = args[i+1]
			i++
		}
		ctx.Flags[name] = append(ctx.Flags[name], value)
	}
	return ctx
}

// Flag returns the value of the first of the given names that was set. A
// repeated flag resolves to its last value.
func (c *Context) Flag(names ...string) (string, bool) {
	for _, name := range names {
		if values := c.Flags[name]; len(values) > 0 {
			return values[len(values)-1], true
		}
	}
	return "", false
}

// FlagAll returns every value given under the names.
func (c *Context) FlagAll(names ...string) []string {
	var all []string
	for _, name := range names {
		all = append(all, c.Flags[name]...)
	}
	return all
}

// HasFlag reports whether any of the names was given.
func (c *Context) HasFlag(names ...string) bool {
	for _, name := range names {
		if _, ok := c.Flags[name]; ok {
			return true
		}
	}
	return false
}
