package discord

import (
	"context"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swanny246/TuroApp/internal/lock"
)

type permissionCall struct {
	channelID, targetID string
	allow, deny         int64
}

type fakePermissionAPI struct {
	channel   *discordgo.Channel
	memberErr error
	setErrs   []error
	sets      []permissionCall
}

func (f *fakePermissionAPI) GuildMember(_, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	if f.memberErr != nil {
		return nil, f.memberErr
	}
	return &discordgo.Member{User: &discordgo.User{ID: userID}}, nil
}

func (f *fakePermissionAPI) Channel(string, ...discordgo.RequestOption) (*discordgo.Channel, error) {
	return f.channel, nil
}

func (f *fakePermissionAPI) ChannelPermissionSet(channelID, targetID string, _ discordgo.PermissionOverwriteType, allow, deny int64, _ ...discordgo.RequestOption) error {
	f.sets = append(f.sets, permissionCall{channelID, targetID, allow, deny})
	if len(f.setErrs) > 0 {
		err := f.setErrs[0]
		f.setErrs = f.setErrs[1:]
		return err
	}
	return nil
}

func restErr(status, code int) *discordgo.RESTError {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: status, Status: http.StatusText(status)},
		Message:  &discordgo.APIErrorMessage{Code: code},
	}
}

func TestRevokePreservesOtherBits(t *testing.T) {
	api := &fakePermissionAPI{channel: &discordgo.Channel{
		ID: "c1",
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{ID: "role", Type: discordgo.PermissionOverwriteTypeRole, Allow: discordgo.PermissionSendMessages},
			{ID: "bot", Type: discordgo.PermissionOverwriteTypeMember,
				Allow: discordgo.PermissionAddReactions | discordgo.PermissionSendMessages,
				Deny:  discordgo.PermissionAttachFiles},
		},
	}}
	g := newGateway(api, nil)

	require.NoError(t, g.Revoke(context.Background(), "g1", "c1", "bot"))
	require.Len(t, api.sets, 1)
	assert.Equal(t, int64(discordgo.PermissionAddReactions), api.sets[0].allow)
	assert.Equal(t, int64(discordgo.PermissionAttachFiles)|lockPermissions, api.sets[0].deny)
}

func TestGrantAllowsLockPermissions(t *testing.T) {
	api := &fakePermissionAPI{channel: &discordgo.Channel{
		ID: "c1",
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{ID: "bot", Type: discordgo.PermissionOverwriteTypeMember, Deny: lockPermissions | discordgo.PermissionAttachFiles},
		},
	}}
	g := newGateway(api, nil)

	require.NoError(t, g.Grant(context.Background(), "g1", "c1", "bot"))
	require.Len(t, api.sets, 1)
	assert.Equal(t, lockPermissions, api.sets[0].allow)
	assert.Equal(t, int64(discordgo.PermissionAttachFiles), api.sets[0].deny)
}

func TestGatewayErrorMapping(t *testing.T) {
	t.Run("unknown member", func(t *testing.T) {
		api := &fakePermissionAPI{channel: &discordgo.Channel{}, memberErr: restErr(404, discordgo.ErrCodeUnknownMember)}
		err := newGateway(api, nil).Revoke(context.Background(), "g1", "c1", "bot")
		assert.ErrorIs(t, err, lock.ErrParticipantNotFound)
		assert.Empty(t, api.sets)
	})

	t.Run("missing permissions", func(t *testing.T) {
		api := &fakePermissionAPI{channel: &discordgo.Channel{}, setErrs: []error{restErr(403, discordgo.ErrCodeMissingPermissions)}}
		err := newGateway(api, nil).Grant(context.Background(), "g1", "c1", "bot")
		assert.ErrorIs(t, err, lock.ErrPermissionDenied)
		assert.Len(t, api.sets, 1)
	})

	t.Run("server error is retried", func(t *testing.T) {
		api := &fakePermissionAPI{channel: &discordgo.Channel{}, setErrs: []error{restErr(503, 0)}}
		err := newGateway(api, nil).Revoke(context.Background(), "g1", "c1", "bot")
		require.NoError(t, err)
		assert.Len(t, api.sets, 2)
	})
}

func TestClassifyREST(t *testing.T) {
	assert.Nil(t, classifyREST(nil))
	assert.ErrorIs(t, classifyREST(restErr(403, 0)), lock.ErrPermissionDenied)

	var status interface{ StatusCode() int }
	require.ErrorAs(t, classifyREST(restErr(429, 0)), &status)
	assert.Equal(t, 429, status.StatusCode())

	plain := assert.AnError
	assert.Equal(t, plain, classifyREST(plain))
}
