package lock

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/swanny246/TuroApp/internal/command"
	chlock "github.com/swanny246/TuroApp/internal/lock"
	"github.com/swanny246/TuroApp/internal/middleware"
)

// LockCommand locks the channel it is used in. It also handles the
// unlock button attached to lock notices.
type LockCommand struct{}

func (c *LockCommand) Name() string { return "lock" }
func (c *LockCommand) Description() string {
	return "Locks the current channel you're in, if unlocked"
}
func (c *LockCommand) Category() string         { return "🔒 Channel lock" }
func (c *LockCommand) UserPermissions() []int64 { return nil }

func (c *LockCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *LockCommand) Run(ctx context.Context, data interface{}) error {
	switch v := data.(type) {
	case *command.SlashInteractionContext:
		return c.runSlash(ctx, v)
	case *command.ComponentInteractionContext:
		return c.runComponent(ctx, v)
	}
	return nil
}

func (c *LockCommand) runSlash(ctx context.Context, v *command.SlashInteractionContext) error {
	s, e, r := v.Session, v.Event, v.Responder

	if err := r.RespondDeferredEphemeral(s, e); err != nil {
		return fmt.Errorf("failed to defer /lock: %w", err)
	}

	description := "Channel locked. It will stay locked until someone unlocks it."
	if err := v.Engine.ManualLock(ctx, e.GuildID, e.ChannelID); err != nil {
		description = describeError("lock", err)
	}
	return r.EditResponseEmbed(s, e, &discordgo.MessageEmbed{
		Description: description,
		Color:       r.EmbedColor(),
	})
}

func (c *LockCommand) runComponent(ctx context.Context, v *command.ComponentInteractionContext) error {
	s, e, r := v.Session, v.Event, v.Responder

	if e.MessageComponentData().CustomID != command.UnlockButtonID {
		log.Printf("[WARN] Unknown lock component: %s", e.MessageComponentData().CustomID)
		return nil
	}
	if err := r.Acknowledge(s, e); err != nil {
		return fmt.Errorf("failed to acknowledge unlock button: %w", err)
	}

	pressed := chlock.MessageRef{ChannelID: e.ChannelID}
	if e.Message != nil {
		pressed.MessageID = e.Message.ID
	}

	if _, err := v.Engine.UnlockButtonPressed(ctx, e.GuildID, e.ChannelID, pressed); err != nil {
		return r.FollowupEmbedEphemeral(s, e, &discordgo.MessageEmbed{
			Description: describeError("unlock button", err),
			Color:       r.EmbedColor(),
		})
	}
	return nil
}

func init() {
	command.RegisterCommand(
		&LockCommand{},
		middleware.WithGuildOnly(),
		middleware.WithUserPermissionCheck(),
		middleware.WithCommandLogger(),
	)
}
