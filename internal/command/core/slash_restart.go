package core

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/swanny246/TuroApp/internal/command"
	"github.com/swanny246/TuroApp/internal/middleware"
)

// RestartCommand resets the lock engine. Channels that were locked stay
// locked on Discord and have to be unlocked by hand.
type RestartCommand struct{}

func (c *RestartCommand) Name() string             { return "restart" }
func (c *RestartCommand) Description() string      { return "Restarts the bot" }
func (c *RestartCommand) Category() string         { return "🛠️ Maintenance" }
func (c *RestartCommand) UserPermissions() []int64 { return nil }

func (c *RestartCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *RestartCommand) Run(ctx context.Context, data interface{}) error {
	v, ok := data.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}
	s, e, r := v.Session, v.Event, v.Responder

	description := ":white_check_mark: I have restarted successfully *beep boop*."
	if dropped := v.Runtime.RestartEngine(); dropped > 0 {
		description += fmt.Sprintf("\nI forgot about %d locked or counting down channel(s). Use /sync-channels, or /lock then /unlock, to reopen them.", dropped)
	}
	return r.RespondEmbedEphemeral(s, e, &discordgo.MessageEmbed{Description: description, Color: r.EmbedColor()})
}

func init() {
	command.RegisterCommand(
		&RestartCommand{},
		middleware.WithDeveloperOnly(),
		middleware.WithCommandLogger(),
	)
}
