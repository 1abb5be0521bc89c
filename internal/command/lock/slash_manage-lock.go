package lock

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/swanny246/TuroApp/internal/command"
	chlock "github.com/swanny246/TuroApp/internal/lock"
	"github.com/swanny246/TuroApp/internal/middleware"
)

type ManageLockCommand struct{}

func (c *ManageLockCommand) Name() string        { return "manage-lock" }
func (c *ManageLockCommand) Description() string { return "Channel lock settings" }
func (c *ManageLockCommand) Category() string    { return "⚙️ Settings" }
func (c *ManageLockCommand) UserPermissions() []int64 {
	return []int64{discordgo.PermissionManageServer}
}

func (c *ManageLockCommand) SlashDefinition() *discordgo.ApplicationCommand {
	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, category := range chlock.Categories() {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  category.Title(),
			Value: category.String(),
		})
	}
	minZero, maxSeconds := 0.0, float64(chlock.MaxSeconds)

	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "set-policy",
				Description: "Set the auto-unlock duration for a ping category or make it permanent",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "category",
						Description: "Which ping category?",
						Required:    true,
						Choices:     choices,
					},
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "duration",
						Description: "How many seconds before a channel auto-unlocks (3600 = one hour, 0 = ignore pings)",
						MinValue:    &minZero,
						MaxValue:    maxSeconds,
					},
					{
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Name:        "permanent",
						Description: "Lock until someone unlocks manually",
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "set-delay",
				Description: "Set how long to wait after a ping before locking",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "seconds",
						Description: "Seconds between the ping and the lock",
						Required:    true,
						MinValue:    &minZero,
						MaxValue:    maxSeconds,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "settings",
				Description: "View all your timers and lock settings",
			},
		},
	}
}

func (c *ManageLockCommand) Run(ctx context.Context, data interface{}) error {
	v, ok := data.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}
	s, e, r := v.Session, v.Event, v.Responder

	opts := e.ApplicationCommandData().Options
	if len(opts) == 0 {
		return r.RespondEmbedEphemeral(s, e, &discordgo.MessageEmbed{
			Description: "No subcommand provided.",
		})
	}

	sub := opts[0]
	var embed *discordgo.MessageEmbed
	switch sub.Name {
	case "set-policy":
		embed = c.setPolicy(v, sub)
	case "set-delay":
		embed = c.setDelay(v, sub)
	case "settings":
		embed = c.settings(v)
	default:
		embed = &discordgo.MessageEmbed{Description: "Unknown subcommand."}
	}
	if embed.Color == 0 {
		embed.Color = r.EmbedColor()
	}
	return r.RespondEmbedEphemeral(s, e, embed)
}

func (c *ManageLockCommand) setPolicy(v *command.SlashInteractionContext, sub *discordgo.ApplicationCommandInteractionDataOption) *discordgo.MessageEmbed {
	opts := command.Options(sub.Options)

	categoryOpt, ok := opts["category"]
	if !ok {
		return &discordgo.MessageEmbed{Description: "Missing required options."}
	}
	category, err := chlock.ParseCategory(categoryOpt.StringValue())
	if err != nil {
		return &discordgo.MessageEmbed{Description: fmt.Sprintf("Unknown category `%s`.", categoryOpt.StringValue())}
	}

	var seconds *int
	if opt, ok := opts["duration"]; ok {
		n := int(opt.IntValue())
		seconds = &n
	}
	permanent := false
	if opt, ok := opts["permanent"]; ok {
		permanent = opt.BoolValue()
	}

	policy, err := chlock.ParsePolicyRequest(seconds, permanent)
	if err != nil {
		if seconds != nil && permanent {
			return &discordgo.MessageEmbed{Description: "You cannot set both a lock duration and permanent lock. Please choose one."}
		}
		return &discordgo.MessageEmbed{Description: describeError("set-policy", err)}
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s lock timer settings updated", category.Title()),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Lock duration", Value: durationValue(policy)},
			{Name: "Permanent lock", Value: fmt.Sprintf("%t", policy.Permanent)},
		},
	}
	if err := v.Engine.SetPolicy(v.Event.GuildID, category, policy); err != nil {
		if !errors.Is(err, chlock.ErrConfigWrite) {
			return &discordgo.MessageEmbed{Description: describeError("set-policy", err)}
		}
		embed.Description = describeError("set-policy", err)
	}
	return embed
}

func (c *ManageLockCommand) setDelay(v *command.SlashInteractionContext, sub *discordgo.ApplicationCommandInteractionDataOption) *discordgo.MessageEmbed {
	opt, ok := command.Options(sub.Options)["seconds"]
	if !ok {
		return &discordgo.MessageEmbed{Description: "Missing required options."}
	}
	seconds := int(opt.IntValue())

	embed := &discordgo.MessageEmbed{Description: fmt.Sprintf("Lock delay set to %d seconds.", seconds)}
	if err := v.Engine.SetLockDelay(v.Event.GuildID, seconds); err != nil {
		if !errors.Is(err, chlock.ErrConfigWrite) {
			return &discordgo.MessageEmbed{Description: describeError("set-delay", err)}
		}
		embed.Description += "\n" + describeError("set-delay", err)
	}
	return embed
}

func (c *ManageLockCommand) settings(v *command.SlashInteractionContext) *discordgo.MessageEmbed {
	cfg, err := v.Engine.Settings(v.Event.GuildID)
	if err != nil {
		return &discordgo.MessageEmbed{Description: describeError("settings", err)}
	}
	return &discordgo.MessageEmbed{
		Title:  "Current timer and lock settings",
		Fields: SettingsFields(cfg),
	}
}

// SettingsFields renders a guild configuration as embed fields.
func SettingsFields(cfg chlock.GuildConfig) []*discordgo.MessageEmbedField {
	fields := []*discordgo.MessageEmbedField{
		{Name: "Lock delay", Value: fmt.Sprintf("%d seconds", cfg.LockDelay)},
	}
	for _, category := range chlock.Categories() {
		policy := cfg.Policy(category)
		if policy.Permanent {
			fields = append(fields, &discordgo.MessageEmbedField{Name: category.Title() + " lock", Value: "Permanent"})
			continue
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  category.Title() + " lock duration",
			Value: durationValue(policy),
		})
	}
	return fields
}

func durationValue(p chlock.Policy) string {
	switch {
	case p.Permanent:
		return "Not Set"
	case p.Ignored():
		return "Ignored"
	}
	return fmt.Sprintf("%d seconds", p.Seconds)
}

func init() {
	command.RegisterCommand(
		&ManageLockCommand{},
		middleware.WithGuildOnly(),
		middleware.WithUserPermissionCheck(),
		middleware.WithCommandLogger(),
	)
}
