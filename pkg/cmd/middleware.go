package cmd

// Middleware wraps a command (guild-only checks, permissions, logging).
type Middleware func(Command) Command

// Apply applies middlewares in order. The last one in the list is the
// outermost and runs first.
func Apply(c Command, mws ...Middleware) Command {
	for _, mw := range mws {
		c = mw(c)
	}
	return c
}
