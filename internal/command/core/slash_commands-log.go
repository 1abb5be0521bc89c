package core

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/swanny246/TuroApp/internal/command"
	"github.com/swanny246/TuroApp/internal/middleware"
	"github.com/swanny246/TuroApp/internal/storage"
	"github.com/swanny246/TuroApp/pkg/util"
)

const (
	discordMaxMessageLength = 2000
	codeLeftBlockWrapper    = "```md"
	codeRightBlockWrapper   = "```"
	historyDateFormat       = "YYYY-MM-DD hh:mm:ss"
)

var maxContentLength = discordMaxMessageLength - len(codeLeftBlockWrapper) - len(codeRightBlockWrapper) - 1

type CommandsLogCommand struct{}

func (c *CommandsLogCommand) Name() string        { return "commands-log" }
func (c *CommandsLogCommand) Description() string { return "Review recently used commands" }
func (c *CommandsLogCommand) Category() string    { return "⚙️ Settings" }
func (c *CommandsLogCommand) UserPermissions() []int64 {
	return []int64{discordgo.PermissionManageServer}
}

func (c *CommandsLogCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *CommandsLogCommand) Run(ctx context.Context, data interface{}) error {
	v, ok := data.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}
	s, e, r := v.Session, v.Event, v.Responder

	records, err := v.History.FetchCommandHistory(e.GuildID)
	if err != nil {
		log.Printf("[ERR] %s - failed to fetch command history: %v", e.GuildID, err)
		return r.RespondEmbedEphemeral(s, e, &discordgo.MessageEmbed{Description: "Failed to fetch command logs."})
	}
	if len(records) == 0 {
		return r.RespondEmbedEphemeral(s, e, &discordgo.MessageEmbed{Description: "No command history found."})
	}

	return r.RespondEmbedEphemeral(s, e, &discordgo.MessageEmbed{
		Description: codeLeftBlockWrapper + "\n" + renderHistory(records) + codeRightBlockWrapper,
		Color:       r.EmbedColor(),
	})
}

// renderHistory lists records newest first, stopping before the reply
// would exceed a Discord message.
func renderHistory(records []storage.CommandHistoryRecord) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-19s\t%-15s\t%-12s\t%s\n", "# Datetime", "# Username", "# Channel", "# Command"))

	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		line := fmt.Sprintf("%-19s\t%-15s\t#%-12s\t/%s\n",
			util.FormatDate(rec.Datetime, historyDateFormat),
			rec.Username,
			rec.ChannelName,
			rec.Command,
		)
		if b.Len()+len(line) > maxContentLength {
			break
		}
		b.WriteString(line)
	}
	return b.String()
}

func init() {
	command.RegisterCommand(
		&CommandsLogCommand{},
		middleware.WithGuildOnly(),
		middleware.WithUserPermissionCheck(),
	)
}
