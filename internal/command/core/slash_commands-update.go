package core

import (
	"context"
	"errors"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/swanny246/TuroApp/internal/command"
	"github.com/swanny246/TuroApp/internal/middleware"
	"github.com/swanny246/TuroApp/pkg/jobmgr"
)

type CommandsUpdateCommand struct{}

func (c *CommandsUpdateCommand) Name() string        { return "commands-update" }
func (c *CommandsUpdateCommand) Description() string { return "Re-register all slash commands" }
func (c *CommandsUpdateCommand) Category() string    { return "⚙️ Settings" }
func (c *CommandsUpdateCommand) UserPermissions() []int64 {
	return []int64{discordgo.PermissionManageServer}
}

func (c *CommandsUpdateCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *CommandsUpdateCommand) Run(ctx context.Context, data interface{}) error {
	v, ok := data.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}
	s, e, r := v.Session, v.Event, v.Responder

	log.Printf("[INFO] Running commands-update on %s", e.GuildID)
	description := ":white_check_mark: My commands are being synced *beep boop*. If you don't see any expected changes, try restarting the Discord app."
	if err := v.Runtime.ResyncCommands(e.GuildID); err != nil {
		if !errors.Is(err, jobmgr.ErrRunning) {
			log.Printf("[ERR] commands-update failed: %v", err)
			description = "Something went wrong. Vague, I know."
		} else {
			description = "My commands are already being synced, give me a moment."
		}
	}
	return r.RespondEmbedEphemeral(s, e, &discordgo.MessageEmbed{Description: description, Color: r.EmbedColor()})
}

func init() {
	command.RegisterCommand(
		&CommandsUpdateCommand{},
		middleware.WithGuildOnly(),
		middleware.WithUserPermissionCheck(),
		middleware.WithCommandLogger(),
	)
}
