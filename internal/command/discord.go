package command

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/swanny246/TuroApp/internal/config"
	"github.com/swanny246/TuroApp/internal/lock"
	"github.com/swanny246/TuroApp/internal/storage"
	"github.com/swanny246/TuroApp/pkg/cmd"
)

// Discord-specific contexts (what the runtime passes when executing).

type SlashInteractionContext struct {
	Session   *discordgo.Session
	Event     *discordgo.InteractionCreate
	Engine    *lock.Engine
	Config    *config.Config
	Responder Responder
	Logger    CommandLogger
	History   History
	Runtime   Runtime
}

type ComponentInteractionContext struct {
	Session   *discordgo.Session
	Event     *discordgo.InteractionCreate
	Engine    *lock.Engine
	Config    *config.Config
	Responder Responder
	Logger    CommandLogger
}

// Responder lets commands reply without importing the discord package.
type Responder interface {
	RespondEmbed(s *discordgo.Session, e *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error
	RespondEmbedEphemeral(s *discordgo.Session, e *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error
	RespondDeferredEphemeral(s *discordgo.Session, e *discordgo.InteractionCreate) error
	EditResponseEmbed(s *discordgo.Session, e *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error
	// Acknowledge accepts a component interaction without sending a reply.
	Acknowledge(s *discordgo.Session, e *discordgo.InteractionCreate) error
	FollowupEmbedEphemeral(s *discordgo.Session, e *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error
	CheckBotPermissions(s *discordgo.Session, channelID string) bool
	EmbedColor() int
}

// CommandLogger records executed commands.
type CommandLogger interface {
	LogCommand(s *discordgo.Session, guildID, channelID, userID, username, commandName string) error
}

// History reads the recorded command history of a guild.
type History interface {
	FetchCommandHistory(guildID string) ([]storage.CommandHistoryRecord, error)
}

// Runtime controls the running bot.
type Runtime interface {
	// ResyncCommands re-registers every slash command in a guild. It
	// returns jobmgr.ErrRunning while a sync for the guild is in flight.
	ResyncCommands(guildID string) error
	// RestartEngine drops all lock state and timers and starts over. It
	// returns how many channel entries were forgotten.
	RestartEngine() int
}

// Providers: how a command is registered with Discord.

type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// DiscordMeta is exposed by the Discord adapter so middleware can read
// Category/Permissions without depending on the concrete command type.
type DiscordMeta interface {
	Category() string
	UserPermissions() []int64
}

// DiscordCommand is what individual Discord commands implement. Run
// receives a *SlashInteractionContext or *ComponentInteractionContext.
type DiscordCommand interface {
	Name() string
	Description() string
	Category() string
	UserPermissions() []int64
	Run(ctx context.Context, data interface{}) error
}

// DiscordAdapter adapts a DiscordCommand to cmd.Command so it can live in
// the universal registry.
type DiscordAdapter struct {
	Cmd DiscordCommand
}

func (a *DiscordAdapter) Name() string             { return a.Cmd.Name() }
func (a *DiscordAdapter) Description() string      { return a.Cmd.Description() }
func (a *DiscordAdapter) Category() string         { return a.Cmd.Category() }
func (a *DiscordAdapter) UserPermissions() []int64 { return a.Cmd.UserPermissions() }

func (a *DiscordAdapter) Run(ctx context.Context, inv *cmd.Invocation) error {
	return a.Cmd.Run(ctx, inv.Data)
}

func (a *DiscordAdapter) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := a.Cmd.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

// RegisterCommand registers a Discord command with the universal registry
// and applies middlewares.
func RegisterCommand(discordCmd DiscordCommand, mws ...cmd.Middleware) {
	c := cmd.Apply(&DiscordAdapter{Cmd: discordCmd}, mws...)
	cmd.DefaultRegistry.Register(c)
}

// Interaction returns the session and event behind a Discord context.
func Interaction(data interface{}) (*discordgo.Session, *discordgo.InteractionCreate, bool) {
	switch v := data.(type) {
	case *SlashInteractionContext:
		return v.Session, v.Event, true
	case *ComponentInteractionContext:
		return v.Session, v.Event, true
	}
	return nil, nil, false
}

// InteractionUser returns the user behind an interaction, preferring the
// guild member.
func InteractionUser(e *discordgo.InteractionCreate) *discordgo.User {
	if e.Member != nil && e.Member.User != nil {
		return e.Member.User
	}
	if e.User != nil {
		return e.User
	}
	return &discordgo.User{ID: "unknown", Username: "Unknown"}
}
