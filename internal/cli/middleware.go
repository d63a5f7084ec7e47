package cli

import "github.com/grufelous/bakker/internal/logging"

// Middleware decorates a command with behavior around Run.
type Middleware func(Command) Command

// WrappedCommand delegates everything to the wrapped command except Run,
// which goes through Wrap when set.
type WrappedCommand struct {
	Command
	Wrap func(ctx *Context) error
}

func (w *WrappedCommand) Run(ctx *Context) error {
	if w.Wrap != nil {
		return w.Wrap(ctx)
	}
	return w.Command.Run(ctx)
}

// ApplyMiddlewares wraps a command with any number of middlewares.
func ApplyMiddlewares(cmd Command, mws ...Middleware) Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}

// WithInvocationLog logs the parsed invocation before the command runs.
func WithInvocationLog() Middleware {
	return func(cmd Command) Command {
		return &WrappedCommand{
			Command: cmd,
			Wrap: func(ctx *Context) error {
				log := logging.Component("cli")
				log.Debug().
					Str("command", cmd.Name()).
					Strs("args", ctx.Args).
					Interface("flags", ctx.Flags).
					Msg("running command")
				return cmd.Run(ctx)
			},
		}
	}
}
