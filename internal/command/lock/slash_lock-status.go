package lock

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/swanny246/TuroApp/internal/command"
	chlock "github.com/swanny246/TuroApp/internal/lock"
	"github.com/swanny246/TuroApp/internal/middleware"
)

type LockStatusCommand struct{}

func (c *LockStatusCommand) Name() string { return "lock-status" }
func (c *LockStatusCommand) Description() string {
	return "Show whether this channel is locked"
}
func (c *LockStatusCommand) Category() string         { return "🔒 Channel lock" }
func (c *LockStatusCommand) UserPermissions() []int64 { return nil }

func (c *LockStatusCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *LockStatusCommand) Run(ctx context.Context, data interface{}) error {
	v, ok := data.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}
	s, e, r := v.Session, v.Event, v.Responder

	st, _ := v.Engine.Status(e.ChannelID)

	active := 0
	for _, other := range v.Engine.Registry().Snapshot() {
		if other.TenantID == e.GuildID {
			active++
		}
	}

	canManage := "yes"
	if !r.CheckBotPermissions(s, e.ChannelID) {
		canManage = "no, locking will fail here"
	}

	return r.RespondEmbedEphemeral(s, e, &discordgo.MessageEmbed{
		Title:       "Channel lock status",
		Description: describeState(st),
		Color:       r.EmbedColor(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Channels locked or counting down in this server", Value: fmt.Sprintf("%d", active), Inline: true},
			{Name: "Can manage permissions", Value: canManage, Inline: true},
		},
	})
}

// describeState renders a registry entry for /lock-status.
func describeState(st chlock.State) string {
	switch st.Phase {
	case chlock.PhaseCountdown:
		return fmt.Sprintf("A %s ping was seen, the channel will be locked %s.",
			st.Category, command.Timestamp(st.LockAt, "R"))
	case chlock.PhaseLocked:
		if st.UnlockAt != nil {
			return fmt.Sprintf("The channel is locked, it will unlock at %s.", command.Timestamp(*st.UnlockAt, ""))
		}
		return "The channel is locked until someone unlocks manually."
	}
	return "The channel is unlocked."
}

func init() {
	command.RegisterCommand(
		&LockStatusCommand{},
		middleware.WithGuildOnly(),
		middleware.WithCommandLogger(),
	)
}
