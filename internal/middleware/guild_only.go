package middleware

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/swanny246/TuroApp/internal/command"
	"github.com/swanny246/TuroApp/pkg/cmd"
)

// WithGuildOnly rejects interactions that do not come from a guild channel.
func WithGuildOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			s, e, ok := command.Interaction(inv.Data)
			if !ok || e.GuildID != "" {
				return c.Run(ctx, inv)
			}
			if r := responder(inv.Data); r != nil {
				return r.RespondEmbedEphemeral(s, e, &discordgo.MessageEmbed{
					Description: "This command can only be used in a server.",
				})
			}
			return nil
		})
	}
}

func responder(data interface{}) command.Responder {
	switch v := data.(type) {
	case *command.SlashInteractionContext:
		return v.Responder
	case *command.ComponentInteractionContext:
		return v.Responder
	}
	return nil
}
