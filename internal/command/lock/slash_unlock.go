package lock

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/swanny246/TuroApp/internal/command"
	"github.com/swanny246/TuroApp/internal/middleware"
)

type UnlockCommand struct{}

func (c *UnlockCommand) Name() string { return "unlock" }
func (c *UnlockCommand) Description() string {
	return "Unlocks the current channel you're in, if locked"
}
func (c *UnlockCommand) Category() string         { return "🔒 Channel lock" }
func (c *UnlockCommand) UserPermissions() []int64 { return nil }

func (c *UnlockCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *UnlockCommand) Run(ctx context.Context, data interface{}) error {
	v, ok := data.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}
	s, e, r := v.Session, v.Event, v.Responder

	if err := r.RespondDeferredEphemeral(s, e); err != nil {
		return fmt.Errorf("failed to defer /unlock: %w", err)
	}

	released, err := v.Engine.ManualUnlock(ctx, e.GuildID, e.ChannelID)
	description := "Channel unlocked."
	switch {
	case err != nil:
		description = describeError("unlock", err)
	case !released:
		description = "Nothing to unlock here."
	}
	return r.EditResponseEmbed(s, e, &discordgo.MessageEmbed{
		Description: description,
		Color:       r.EmbedColor(),
	})
}

func init() {
	command.RegisterCommand(
		&UnlockCommand{},
		middleware.WithGuildOnly(),
		middleware.WithUserPermissionCheck(),
		middleware.WithCommandLogger(),
	)
}
