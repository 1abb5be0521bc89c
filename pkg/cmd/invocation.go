// Package cmd is the command core shared by slash commands and message
// components: a named command with Run(ctx, invocation), a registry that
// resolves invocation keys to commands, and middleware.
package cmd

import "context"

// Invocation is one execution of a command. Key is what the user invoked:
// a command name, or a component custom id such as "lock:unlock". Args
// holds the colon-separated parts of Key after the command name. Data is
// the transport context (*command.SlashInteractionContext and friends).
type Invocation struct {
	Key  string
	Args []string
	Data interface{}
}

// Command is identity plus execution. Permissions, options and
// registration with Discord live in adapters.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}
