package lock

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swanny246/TuroApp/internal/command"
	chlock "github.com/swanny246/TuroApp/internal/lock"
	"github.com/swanny246/TuroApp/internal/storage"
	"github.com/swanny246/TuroApp/pkg/clock"
)

const (
	guildID   = "g1"
	channelID = "c1"
)

type fakeResponder struct {
	deferred  int
	acked     int
	edited    []*discordgo.MessageEmbed
	ephemeral []*discordgo.MessageEmbed
	followups []*discordgo.MessageEmbed
	canManage bool
}

func (r *fakeResponder) RespondEmbed(_ *discordgo.Session, _ *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	r.ephemeral = append(r.ephemeral, embed)
	return nil
}

func (r *fakeResponder) RespondEmbedEphemeral(_ *discordgo.Session, _ *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	r.ephemeral = append(r.ephemeral, embed)
	return nil
}

func (r *fakeResponder) RespondDeferredEphemeral(*discordgo.Session, *discordgo.InteractionCreate) error {
	r.deferred++
	return nil
}

func (r *fakeResponder) EditResponseEmbed(_ *discordgo.Session, _ *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	r.edited = append(r.edited, embed)
	return nil
}

func (r *fakeResponder) Acknowledge(*discordgo.Session, *discordgo.InteractionCreate) error {
	r.acked++
	return nil
}

func (r *fakeResponder) FollowupEmbedEphemeral(_ *discordgo.Session, _ *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	r.followups = append(r.followups, embed)
	return nil
}

func (r *fakeResponder) CheckBotPermissions(*discordgo.Session, string) bool { return r.canManage }
func (r *fakeResponder) EmbedColor() int                                     { return 0xb01e66 }

type fakeGateway struct {
	calls []string
	err   error
}

func (g *fakeGateway) Revoke(_ context.Context, _, channelID, _ string) error {
	g.calls = append(g.calls, "revoke:"+channelID)
	return g.err
}

func (g *fakeGateway) Grant(_ context.Context, _, channelID, _ string) error {
	g.calls = append(g.calls, "grant:"+channelID)
	return g.err
}

type fakeSink struct {
	posts []chlock.Notice
	edits map[string][]chlock.Notice
}

func (s *fakeSink) Post(_ context.Context, channelID string, n chlock.Notice) (chlock.MessageRef, error) {
	s.posts = append(s.posts, n)
	return chlock.MessageRef{ChannelID: channelID, MessageID: "status"}, nil
}

func (s *fakeSink) Edit(_ context.Context, ref chlock.MessageRef, n chlock.Notice) error {
	if s.edits == nil {
		s.edits = map[string][]chlock.Notice{}
	}
	s.edits[ref.MessageID] = append(s.edits[ref.MessageID], n)
	return nil
}

type harness struct {
	engine    *chlock.Engine
	gateway   *fakeGateway
	sink      *fakeSink
	responder *fakeResponder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	defaults := chlock.GuildConfig{
		LockDelay: 5,
		Policies: map[chlock.Category]chlock.Policy{
			chlock.CategoryShiny: chlock.Timed(3600),
			chlock.CategoryRare:  chlock.Permanent(),
		},
	}
	store, err := storage.New(filepath.Join(t.TempDir(), "store.json"), defaults)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := &harness{gateway: &fakeGateway{}, sink: &fakeSink{}, responder: &fakeResponder{canManage: true}}
	h.engine = chlock.NewEngine(chlock.Options{
		GuardedID: "poketwo",
		Clock:     clock.Fake(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)),
	}, store, h.gateway, h.sink)
	t.Cleanup(h.engine.Stop)
	return h
}

func (h *harness) slash(name string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *command.SlashInteractionContext {
	return &command.SlashInteractionContext{
		Event: &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			Type:      discordgo.InteractionApplicationCommand,
			GuildID:   guildID,
			ChannelID: channelID,
			Data:      discordgo.ApplicationCommandInteractionData{Name: name, Options: opts},
		}},
		Engine:    h.engine,
		Responder: h.responder,
	}
}

func (h *harness) button(customID, messageID string) *command.ComponentInteractionContext {
	return &command.ComponentInteractionContext{
		Event: &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			Type:      discordgo.InteractionMessageComponent,
			GuildID:   guildID,
			ChannelID: channelID,
			Message:   &discordgo.Message{ID: messageID},
			Data:      discordgo.MessageComponentInteractionData{CustomID: customID},
		}},
		Engine:    h.engine,
		Responder: h.responder,
	}
}

func subcommand(name string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:    name,
		Type:    discordgo.ApplicationCommandOptionSubCommand,
		Options: opts,
	}
}

func option(name string, t discordgo.ApplicationCommandOptionType, value interface{}) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: t, Value: value}
}

func TestLockCommand(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, (&LockCommand{}).Run(context.Background(), h.slash("lock")))

	assert.Equal(t, 1, h.responder.deferred)
	require.Len(t, h.responder.edited, 1)
	assert.Contains(t, h.responder.edited[0].Description, "Channel locked.")
	assert.Equal(t, []string{"revoke:" + channelID}, h.gateway.calls)

	st, ok := h.engine.Status(channelID)
	require.True(t, ok)
	assert.Equal(t, chlock.PhaseLocked, st.Phase)
}

func TestLockCommandPermissionDenied(t *testing.T) {
	h := newHarness(t)
	h.gateway.err = chlock.ErrPermissionDenied

	require.NoError(t, (&LockCommand{}).Run(context.Background(), h.slash("lock")))

	require.Len(t, h.responder.edited, 1)
	assert.Equal(t, missingPermissions, h.responder.edited[0].Description)
	_, ok := h.engine.Status(channelID)
	assert.False(t, ok)
}

func TestUnlockCommand(t *testing.T) {
	h := newHarness(t)
	unlock := &UnlockCommand{}

	require.NoError(t, unlock.Run(context.Background(), h.slash("unlock")))
	assert.Equal(t, "Nothing to unlock here.", h.responder.edited[0].Description)

	require.NoError(t, h.engine.ManualLock(context.Background(), guildID, channelID))
	require.NoError(t, unlock.Run(context.Background(), h.slash("unlock")))
	assert.Equal(t, "Channel unlocked.", h.responder.edited[1].Description)
	assert.Equal(t, []string{"revoke:" + channelID, "grant:" + channelID}, h.gateway.calls)
}

func TestUnlockButton(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.engine.ManualLock(context.Background(), guildID, channelID))

	require.NoError(t, (&LockCommand{}).Run(context.Background(), h.button(command.UnlockButtonID, "status")))

	assert.Equal(t, 1, h.responder.acked)
	assert.Empty(t, h.responder.followups)
	_, ok := h.engine.Status(channelID)
	assert.False(t, ok)
	edits := h.sink.edits["status"]
	require.NotEmpty(t, edits)
	assert.Equal(t, chlock.AffordanceUsed, edits[len(edits)-1].Affordance)
}

func TestUnknownButtonIsIgnored(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, (&LockCommand{}).Run(context.Background(), h.button("lock:other", "status")))
	assert.Zero(t, h.responder.acked)
	assert.Empty(t, h.gateway.calls)
}

func TestManageLockSetPolicy(t *testing.T) {
	h := newHarness(t)
	manage := &ManageLockCommand{}

	err := manage.Run(context.Background(), h.slash("manage-lock", subcommand("set-policy",
		option("category", discordgo.ApplicationCommandOptionString, "shiny"),
		option("duration", discordgo.ApplicationCommandOptionInteger, float64(120)),
	)))
	require.NoError(t, err)
	require.Len(t, h.responder.ephemeral, 1)
	assert.Equal(t, "Shiny lock timer settings updated", h.responder.ephemeral[0].Title)

	cfg, err := h.engine.Settings(guildID)
	require.NoError(t, err)
	assert.Equal(t, chlock.Timed(120), cfg.Policy(chlock.CategoryShiny))
}

func TestManageLockRejectsDurationAndPermanent(t *testing.T) {
	h := newHarness(t)

	err := (&ManageLockCommand{}).Run(context.Background(), h.slash("manage-lock", subcommand("set-policy",
		option("category", discordgo.ApplicationCommandOptionString, "rare"),
		option("duration", discordgo.ApplicationCommandOptionInteger, float64(60)),
		option("permanent", discordgo.ApplicationCommandOptionBoolean, true),
	)))
	require.NoError(t, err)
	assert.Equal(t, "You cannot set both a lock duration and permanent lock. Please choose one.", h.responder.ephemeral[0].Description)

	cfg, err := h.engine.Settings(guildID)
	require.NoError(t, err)
	assert.Equal(t, chlock.Permanent(), cfg.Policy(chlock.CategoryRare))
}

func TestManageLockSetDelayAndSettings(t *testing.T) {
	h := newHarness(t)
	manage := &ManageLockCommand{}

	require.NoError(t, manage.Run(context.Background(), h.slash("manage-lock", subcommand("set-delay",
		option("seconds", discordgo.ApplicationCommandOptionInteger, float64(9)),
	))))
	assert.Equal(t, "Lock delay set to 9 seconds.", h.responder.ephemeral[0].Description)

	require.NoError(t, manage.Run(context.Background(), h.slash("manage-lock", subcommand("settings"))))
	fields := h.responder.ephemeral[1].Fields
	require.NotEmpty(t, fields)
	assert.Equal(t, "9 seconds", fields[0].Value)
}

func TestManageLockBoundsSeconds(t *testing.T) {
	h := newHarness(t)
	manage := &ManageLockCommand{}

	for _, sub := range manage.SlashDefinition().Options {
		for _, opt := range sub.Options {
			if opt.Type == discordgo.ApplicationCommandOptionInteger {
				assert.Equal(t, float64(chlock.MaxSeconds), opt.MaxValue, opt.Name)
			}
		}
	}

	require.NoError(t, manage.Run(context.Background(), h.slash("manage-lock", subcommand("set-policy",
		option("category", discordgo.ApplicationCommandOptionString, "shiny"),
		option("duration", discordgo.ApplicationCommandOptionInteger, float64(10_000_000_000)),
	))))
	require.NoError(t, manage.Run(context.Background(), h.slash("manage-lock", subcommand("set-delay",
		option("seconds", discordgo.ApplicationCommandOptionInteger, float64(chlock.MaxSeconds+1)),
	))))
	require.Len(t, h.responder.ephemeral, 2)
	assert.Contains(t, h.responder.ephemeral[0].Description, "lock duration cannot be more than")
	assert.Contains(t, h.responder.ephemeral[1].Description, "lock delay cannot be more than")

	cfg, err := h.engine.Settings(guildID)
	require.NoError(t, err)
	assert.Equal(t, chlock.Timed(3600), cfg.Policy(chlock.CategoryShiny))
	assert.Equal(t, 5, cfg.LockDelay)
}

func TestSettingsFields(t *testing.T) {
	fields := SettingsFields(chlock.GuildConfig{
		LockDelay: 5,
		Policies: map[chlock.Category]chlock.Policy{
			chlock.CategoryShiny: chlock.Timed(60),
			chlock.CategoryRare:  chlock.Permanent(),
		},
	})

	got := map[string]string{}
	for _, f := range fields {
		got[f.Name] = f.Value
	}
	assert.Equal(t, map[string]string{
		"Lock delay":               "5 seconds",
		"Shiny lock duration":      "60 seconds",
		"Rare lock":                "Permanent",
		"Regional lock duration":   "Ignored",
		"Collection lock duration": "Ignored",
	}, got)
}

func TestLockStatusCommand(t *testing.T) {
	h := newHarness(t)
	h.responder.canManage = false
	require.NoError(t, h.engine.ManualLock(context.Background(), guildID, channelID))

	require.NoError(t, (&LockStatusCommand{}).Run(context.Background(), h.slash("lock-status")))

	embed := h.responder.ephemeral[0]
	assert.Equal(t, "The channel is locked until someone unlocks manually.", embed.Description)
	assert.Equal(t, "1", embed.Fields[0].Value)
	assert.Equal(t, "no, locking will fail here", embed.Fields[1].Value)
}

func TestDescribeState(t *testing.T) {
	at := time.Unix(1700000000, 0)

	assert.Equal(t, "The channel is unlocked.", describeState(chlock.State{}))
	assert.Equal(t,
		"A shiny ping was seen, the channel will be locked <t:1700000000:R>.",
		describeState(chlock.State{Phase: chlock.PhaseCountdown, Category: chlock.CategoryShiny, LockAt: at}))
	assert.Equal(t,
		"The channel is locked, it will unlock at <t:1700000000>.",
		describeState(chlock.State{Phase: chlock.PhaseLocked, UnlockAt: &at}))
}

func TestSyncTargets(t *testing.T) {
	category := &discordgo.Channel{ID: "cat", Type: discordgo.ChannelTypeGuildCategory}
	channels := []*discordgo.Channel{
		category,
		{ID: "a", ParentID: "cat"},
		{ID: "b", ParentID: "other"},
		{ID: "c", ParentID: "cat"},
		{ID: "d", ParentID: "cat"},
	}

	ids := func(chs []*discordgo.Channel) []string {
		var out []string
		for _, ch := range chs {
			out = append(out, ch.ID)
		}
		return out
	}
	targets, skipped := SyncTargets(category, channels, func(id string) bool { return id == "c" })
	assert.Equal(t, []string{"a", "d"}, ids(targets))
	assert.Equal(t, []string{"c"}, ids(skipped))

	targets, skipped = SyncTargets(nil, channels, nil)
	assert.Nil(t, targets)
	assert.Nil(t, skipped)
}

type fakeChannelEditor struct {
	mu      sync.Mutex
	edits   map[string][]*discordgo.PermissionOverwrite
	deletes []string
}

func (f *fakeChannelEditor) ChannelEdit(channelID string, data *discordgo.ChannelEdit, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.edits == nil {
		f.edits = map[string][]*discordgo.PermissionOverwrite{}
	}
	f.edits[channelID] = data.PermissionOverwrites
	return &discordgo.Channel{ID: channelID}, nil
}

func (f *fakeChannelEditor) ChannelPermissionDelete(channelID, targetID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, channelID+":"+targetID)
	return nil
}

func TestSyncCategoryKeepsLockedChannels(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.engine.ManualLock(context.Background(), guildID, "locked"))

	deny := &discordgo.PermissionOverwrite{ID: "poketwo", Type: discordgo.PermissionOverwriteTypeMember, Deny: discordgo.PermissionViewChannel}
	category := &discordgo.Channel{
		ID:                   "cat",
		Type:                 discordgo.ChannelTypeGuildCategory,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{{ID: "role", Type: discordgo.PermissionOverwriteTypeRole}},
	}
	channels := []*discordgo.Channel{
		{ID: "open", Name: "open", ParentID: "cat"},
		{ID: "locked", Name: "locked", ParentID: "cat", PermissionOverwrites: []*discordgo.PermissionOverwrite{deny}},
	}
	held := func(id string) bool {
		_, ok := h.engine.Status(id)
		return ok
	}

	api := &fakeChannelEditor{}
	res := syncCategory(context.Background(), api, category, channels, held)
	assert.Equal(t, []string{"open"}, res.synced)
	assert.Equal(t, []string{"locked"}, res.skipped)
	assert.Contains(t, api.edits, "open")
	assert.NotContains(t, api.edits, "locked")

	st, ok := h.engine.Status("locked")
	require.True(t, ok)
	assert.Equal(t, chlock.PhaseLocked, st.Phase)
	assert.Equal(t,
		"Successfully synced all channels in the category Pokemon.\nSkipped channels with an active lock or countdown: locked",
		res.describe("Pokemon"))
}

func TestSyncCategoryWithoutOverwritesClearsChannels(t *testing.T) {
	category := &discordgo.Channel{ID: "cat", Type: discordgo.ChannelTypeGuildCategory}
	channels := []*discordgo.Channel{
		{ID: "a", Name: "a", ParentID: "cat", PermissionOverwrites: []*discordgo.PermissionOverwrite{{ID: "r1"}, {ID: "r2"}}},
		{ID: "b", Name: "b", ParentID: "cat"},
	}

	api := &fakeChannelEditor{}
	res := syncCategory(context.Background(), api, category, channels, nil)
	assert.Empty(t, api.edits)
	assert.ElementsMatch(t, []string{"a:r1", "a:r2"}, api.deletes)
	assert.Equal(t, []string{"a", "b"}, res.synced)

	empty := syncCategory(context.Background(), api, category, nil, nil)
	assert.Equal(t, "There are no channels in the category Pokemon.", empty.describe("Pokemon"))
}
