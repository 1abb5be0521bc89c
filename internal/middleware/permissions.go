package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/swanny246/TuroApp/internal/command"
	"github.com/swanny246/TuroApp/internal/config"
	"github.com/swanny246/TuroApp/pkg/cmd"
)

var PermissionNames = map[int64]string{
	discordgo.PermissionAdministrator:      "Administrator",
	discordgo.PermissionManageChannels:     "Manage Channels",
	discordgo.PermissionManageServer:       "Manage Server",
	discordgo.PermissionManageRoles:        "Manage Roles",
	discordgo.PermissionManageMessages:     "Manage Messages",
	discordgo.PermissionViewChannel:        "View Channel",
	discordgo.PermissionSendMessages:       "Send Messages",
	discordgo.PermissionReadMessageHistory: "Read Message History",
}

// WithUserPermissionCheck requires the invoking member to hold at least one
// of the command's UserPermissions. Administrators and the configured
// developer always pass.
func WithUserPermissionCheck() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			s, e, ok := command.Interaction(inv.Data)
			if !ok || e.GuildID == "" || e.Member == nil || e.Member.User == nil {
				return c.Run(ctx, inv)
			}

			meta, ok := cmd.Root(c).(command.DiscordMeta)
			if !ok || len(meta.UserPermissions()) == 0 {
				return c.Run(ctx, inv)
			}
			if cfg := configOf(inv.Data); cfg != nil && config.IsDeveloper(cfg, e.Member.User.ID) {
				return c.Run(ctx, inv)
			}

			// Interaction members carry their resolved channel permissions.
			memberPerms := e.Member.Permissions
			if memberPerms == 0 && s != nil {
				perms, err := s.UserChannelPermissions(e.Member.User.ID, e.ChannelID)
				if err != nil {
					return fmt.Errorf("failed to get user permissions: %w", err)
				}
				memberPerms = perms
			}
			if memberPerms&discordgo.PermissionAdministrator != 0 {
				return c.Run(ctx, inv)
			}

			required := meta.UserPermissions()
			for _, p := range required {
				if memberPerms&p != 0 {
					return c.Run(ctx, inv)
				}
			}

			var allowed []string
			for _, p := range required {
				name := PermissionNames[p]
				if name == "" {
					name = fmt.Sprintf("0x%x", p)
				}
				allowed = append(allowed, name)
			}
			msg := fmt.Sprintf(
				":exclamation: You are not the master, you have no control over me!\nYou need at least one of the following permissions to run this command:\n`%s`",
				strings.Join(allowed, "`, `"),
			)
			if r := responder(inv.Data); r != nil {
				return r.RespondEmbedEphemeral(s, e, &discordgo.MessageEmbed{Description: msg})
			}
			return nil
		})
	}
}

func configOf(data interface{}) *config.Config {
	switch v := data.(type) {
	case *command.SlashInteractionContext:
		return v.Config
	case *command.ComponentInteractionContext:
		return v.Config
	}
	return nil
}
