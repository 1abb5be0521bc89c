package middleware

import (
	"context"
	"log"

	"github.com/swanny246/TuroApp/internal/command"
	"github.com/swanny246/TuroApp/pkg/cmd"
)

// WithCommandLogger records every executed command in the guild's history.
func WithCommandLogger() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			err := c.Run(ctx, inv)

			var logger command.CommandLogger
			kind := "command"
			switch v := inv.Data.(type) {
			case *command.SlashInteractionContext:
				logger = v.Logger
			case *command.ComponentInteractionContext:
				logger, kind = v.Logger, "component"
			}
			s, e, ok := command.Interaction(inv.Data)
			if !ok || logger == nil || e.GuildID == "" {
				return err
			}

			user := command.InteractionUser(e)
			if logErr := logger.LogCommand(s, e.GuildID, e.ChannelID, user.ID, user.Username, c.Name()); logErr != nil {
				log.Printf("[WARN] Failed to log %s /%s: %v", kind, c.Name(), logErr)
			}
			return err
		})
	}
}
