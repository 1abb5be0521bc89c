package middleware

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/swanny246/TuroApp/internal/command"
	"github.com/swanny246/TuroApp/internal/config"
	"github.com/swanny246/TuroApp/pkg/cmd"
)

// WithDeveloperOnly lets only the configured developer run the command.
func WithDeveloperOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			s, e, ok := command.Interaction(inv.Data)
			if !ok {
				return c.Run(ctx, inv)
			}
			if config.IsDeveloper(configOf(inv.Data), command.InteractionUser(e).ID) {
				return c.Run(ctx, inv)
			}
			if r := responder(inv.Data); r != nil {
				return r.RespondEmbedEphemeral(s, e, &discordgo.MessageEmbed{
					Description: ":exclamation: You are not my master, you have no control over me!",
				})
			}
			return nil
		})
	}
}
