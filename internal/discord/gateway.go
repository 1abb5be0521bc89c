package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/swanny246/TuroApp/internal/lock"
	"github.com/swanny246/TuroApp/pkg/retrylimit"
)

// lockPermissions are the overwrite bits toggled on the guarded bot.
const lockPermissions int64 = discordgo.PermissionViewChannel |
	discordgo.PermissionSendMessages |
	discordgo.PermissionReadMessageHistory

// permissionAPI is the part of *discordgo.Session the gateway needs.
type permissionAPI interface {
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelPermissionSet(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64, options ...discordgo.RequestOption) error
}

// Gateway implements lock.PermissionGateway with member permission
// overwrites. Bits other than lockPermissions are preserved.
type Gateway struct {
	api     permissionAPI
	state   *discordgo.State
	limiter *retrylimit.AdaptiveLimiter
}

func NewGateway(s *discordgo.Session) *Gateway {
	return newGateway(s, s.State)
}

func newGateway(api permissionAPI, state *discordgo.State) *Gateway {
	return &Gateway{
		api:     api,
		state:   state,
		limiter: retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5),
	}
}

// Revoke denies the guarded bot access to the channel.
func (g *Gateway) Revoke(ctx context.Context, guildID, channelID, participantID string) error {
	return g.apply(ctx, guildID, channelID, participantID, func(allow, deny int64) (int64, int64) {
		return allow &^ lockPermissions, deny | lockPermissions
	})
}

// Grant explicitly allows the guarded bot back in.
func (g *Gateway) Grant(ctx context.Context, guildID, channelID, participantID string) error {
	return g.apply(ctx, guildID, channelID, participantID, func(allow, deny int64) (int64, int64) {
		return allow | lockPermissions, deny &^ lockPermissions
	})
}

func (g *Gateway) apply(ctx context.Context, guildID, channelID, participantID string, edit func(allow, deny int64) (int64, int64)) error {
	if err := g.ensureMember(ctx, guildID, participantID); err != nil {
		return err
	}

	var ch *discordgo.Channel
	err := g.retry(ctx, func() (err error) {
		ch, err = g.api.Channel(channelID, discordgo.WithContext(ctx))
		return err
	})
	if err != nil {
		return fmt.Errorf("fetch channel %s: %w", channelID, err)
	}

	allow, deny := memberOverwrite(ch, participantID)
	allow, deny = edit(allow, deny)

	err = g.retry(ctx, func() error {
		return g.api.ChannelPermissionSet(channelID, participantID, discordgo.PermissionOverwriteTypeMember, allow, deny, discordgo.WithContext(ctx))
	})
	if err != nil {
		return fmt.Errorf("edit overwrite in %s: %w", channelID, err)
	}
	return nil
}

func (g *Gateway) ensureMember(ctx context.Context, guildID, userID string) error {
	if g.state != nil {
		if m, err := g.state.Member(guildID, userID); err == nil && m != nil {
			return nil
		}
	}
	err := g.retry(ctx, func() error {
		_, err := g.api.GuildMember(guildID, userID, discordgo.WithContext(ctx))
		return err
	})
	if err != nil {
		return fmt.Errorf("fetch member %s: %w", userID, err)
	}
	return nil
}

func (g *Gateway) retry(ctx context.Context, call func() error) error {
	return retrylimit.WithRetryConfig(ctx, func() error {
		return classifyREST(call())
	}, g.limiter, restRetryConfig())
}

// memberOverwrite returns the current allow and deny bits of the member's
// overwrite, zero when there is none.
func memberOverwrite(ch *discordgo.Channel, userID string) (allow, deny int64) {
	for _, o := range ch.PermissionOverwrites {
		if o.Type == discordgo.PermissionOverwriteTypeMember && o.ID == userID {
			return o.Allow, o.Deny
		}
	}
	return 0, 0
}

var _ lock.PermissionGateway = (*Gateway)(nil)
