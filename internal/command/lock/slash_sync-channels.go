package lock

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/swanny246/TuroApp/internal/command"
	"github.com/swanny246/TuroApp/internal/middleware"
	"github.com/swanny246/TuroApp/pkg/util"
)

const syncWorkers = 4

// SyncChannelsCommand resets the permission overwrites of every channel in
// a category to the category's own. Channels with an active lock or
// countdown are left alone.
type SyncChannelsCommand struct{}

func (c *SyncChannelsCommand) Name() string { return "sync-channels" }
func (c *SyncChannelsCommand) Description() string {
	return "Sync permissions of all channels in a category with the category"
}
func (c *SyncChannelsCommand) Category() string { return "⚙️ Settings" }
func (c *SyncChannelsCommand) UserPermissions() []int64 {
	return []int64{discordgo.PermissionManageServer}
}

func (c *SyncChannelsCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:         discordgo.ApplicationCommandOptionChannel,
				Name:         "category",
				Description:  "The category whose channels' permissions you want to sync",
				Required:     true,
				ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildCategory},
			},
		},
	}
}

func (c *SyncChannelsCommand) Run(ctx context.Context, data interface{}) error {
	v, ok := data.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}
	s, e, r := v.Session, v.Event, v.Responder

	opt, ok := command.Options(e.ApplicationCommandData().Options)["category"]
	if !ok {
		return r.RespondEmbedEphemeral(s, e, &discordgo.MessageEmbed{Description: "Missing required options."})
	}
	if err := r.RespondDeferredEphemeral(s, e); err != nil {
		return fmt.Errorf("failed to defer /sync-channels: %w", err)
	}

	category := opt.ChannelValue(s)
	if category == nil || category.Type != discordgo.ChannelTypeGuildCategory {
		return r.EditResponseEmbed(s, e, &discordgo.MessageEmbed{Description: "That is not a category."})
	}
	channels, err := s.GuildChannels(e.GuildID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to list channels: %w", err)
	}

	held := func(id string) bool {
		_, ok := v.Engine.Status(id)
		return ok
	}
	res := syncCategory(ctx, s, category, channels, held)
	for name, err := range res.errs {
		log.Printf("[ERR] %s - failed to sync %s: %v", e.GuildID, name, err)
	}
	return r.EditResponseEmbed(s, e, &discordgo.MessageEmbed{Description: res.describe(category.Name), Color: r.EmbedColor()})
}

// channelEditor is the part of *discordgo.Session a sync needs.
type channelEditor interface {
	ChannelEdit(channelID string, data *discordgo.ChannelEdit, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelPermissionDelete(channelID, targetID string, options ...discordgo.RequestOption) error
}

type syncResult struct {
	synced  []string
	skipped []string
	failed  []string
	errs    map[string]error
}

func (r syncResult) describe(category string) string {
	var lines []string
	switch {
	case len(r.failed) > 0:
		lines = append(lines, fmt.Sprintf("Failed to sync the following channels: %s", strings.Join(r.failed, ", ")))
	case len(r.synced) > 0:
		lines = append(lines, fmt.Sprintf("Successfully synced all channels in the category %s.", category))
	case len(r.skipped) == 0:
		lines = append(lines, fmt.Sprintf("There are no channels in the category %s.", category))
	}
	if len(r.skipped) > 0 {
		lines = append(lines, fmt.Sprintf("Skipped channels with an active lock or countdown: %s", strings.Join(r.skipped, ", ")))
	}
	return strings.Join(lines, "\n")
}

// syncCategory copies the category's overwrites onto its children, leaving
// out channels the engine holds so their lock stays in place.
func syncCategory(ctx context.Context, api channelEditor, category *discordgo.Channel, channels []*discordgo.Channel, held func(channelID string) bool) syncResult {
	targets, skipped := SyncTargets(category, channels, held)
	res := syncResult{errs: map[string]error{}}
	for _, ch := range skipped {
		res.skipped = append(res.skipped, ch.Name)
	}

	errs := util.Parallel(ctx, targets, syncWorkers, func(ctx context.Context, ch *discordgo.Channel) error {
		return syncChannel(ctx, api, category, ch)
	})
	for i, err := range errs {
		name := targets[i].Name
		if err != nil {
			res.failed = append(res.failed, name)
			res.errs[name] = err
			continue
		}
		res.synced = append(res.synced, name)
	}
	return res
}

func syncChannel(ctx context.Context, api channelEditor, category, ch *discordgo.Channel) error {
	if len(category.PermissionOverwrites) > 0 {
		_, err := api.ChannelEdit(ch.ID, &discordgo.ChannelEdit{
			PermissionOverwrites: category.PermissionOverwrites,
		}, discordgo.WithContext(ctx))
		return err
	}
	// An empty overwrite list is omitted from the edit payload.
	for _, ow := range ch.PermissionOverwrites {
		if err := api.ChannelPermissionDelete(ch.ID, ow.ID, discordgo.WithContext(ctx)); err != nil {
			return err
		}
	}
	return nil
}

// SyncTargets returns the channels whose parent is category, split into
// those to sync and those held by the lock engine.
func SyncTargets(category *discordgo.Channel, channels []*discordgo.Channel, held func(channelID string) bool) (targets, skipped []*discordgo.Channel) {
	if category == nil {
		return nil, nil
	}
	for _, ch := range channels {
		if ch.ParentID != category.ID || ch.ID == category.ID {
			continue
		}
		if held != nil && held(ch.ID) {
			skipped = append(skipped, ch)
			continue
		}
		targets = append(targets, ch)
	}
	return targets, skipped
}

func init() {
	command.RegisterCommand(
		&SyncChannelsCommand{},
		middleware.WithGuildOnly(),
		middleware.WithUserPermissionCheck(),
		middleware.WithCommandLogger(),
	)
}
