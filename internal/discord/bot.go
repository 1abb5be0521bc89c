package discord

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/swanny246/TuroApp/internal/command"
	"github.com/swanny246/TuroApp/internal/config"
	"github.com/swanny246/TuroApp/internal/lock"
	"github.com/swanny246/TuroApp/internal/metrics"
	"github.com/swanny246/TuroApp/internal/storage"
	"github.com/swanny246/TuroApp/internal/version"
	"github.com/swanny246/TuroApp/pkg/cmd"
	"github.com/swanny246/TuroApp/pkg/jobmgr"
)

// Bot is the Discord runtime: it feeds guild messages to the lock engine
// and dispatches slash commands and buttons.
type Bot struct {
	dg      *discordgo.Session
	cfg     *config.Config
	storage *storage.Storage
	jobs    *jobmgr.Manager
	ctx     context.Context

	engineMu sync.RWMutex
	engine   *lock.Engine
}

func NewBot(cfg *config.Config, store *storage.Storage) *Bot {
	return &Bot{cfg: cfg, storage: store}
}

// Run connects to Discord and blocks until ctx is cancelled. Pending lock
// timers are dropped on return; Discord permissions stay as they are.
func (b *Bot) Run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.dg = dg
	b.ctx = ctx
	b.jobs = jobmgr.NewManager(ctx, func(msg string) {
		log.Println("[DEBUG] job", msg)
	})
	defer b.jobs.StopAll()

	if len(b.cfg.TrustedSenderIDs) == 0 {
		log.Println("[WARN] TRUSTED_SENDER_IDS is empty, no ping will ever lock a channel")
	}
	b.engine = b.newEngine()
	defer func() { b.currentEngine().Stop() }()

	b.configureIntents()
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onInteractionCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Println("[INFO] ❎ Shutdown signal received. Cleaning up...")
	return nil
}

func (b *Bot) newEngine() *lock.Engine {
	return lock.NewEngine(lock.Options{
		GuardedID:  b.cfg.GuardedBotID,
		TrustedIDs: b.cfg.TrustedSenderIDs,
	}, b.storage, NewGateway(b.dg), NewNotifier(b.dg, b.cfg.GuardedBotName))
}

func (b *Bot) currentEngine() *lock.Engine {
	b.engineMu.RLock()
	defer b.engineMu.RUnlock()
	return b.engine
}

// RestartEngine replaces the lock engine with a fresh one. Pending
// countdowns and auto-unlocks are dropped and channels keep their current
// Discord permissions.
func (b *Bot) RestartEngine() int {
	b.engineMu.Lock()
	defer b.engineMu.Unlock()

	dropped := len(b.engine.Registry().Snapshot())
	b.engine.Stop()
	b.engine = b.newEngine()
	metrics.SetChannels(0, 0)
	log.Printf("[INFO] Lock engine restarted, %d channel(s) forgotten", dropped)
	return dropped
}

// ResyncCommands clears the stored command hashes of a guild and
// registers every slash command again.
func (b *Bot) ResyncCommands(guildID string) error {
	return b.startCommandSync(guildID, true)
}

// startCommandSync runs the guild's command registration as the named job
// commands:<guild>, so Ready and GuildCreate never register twice.
func (b *Bot) startCommandSync(guildID string, force bool) error {
	return b.jobs.StartAsync("commands:"+guildID, func(ctx context.Context) error {
		if force {
			if err := b.storage.SetCommandHashes(guildID, nil); err != nil {
				return err
			}
		}
		return b.registerCommands(ctx, guildID)
	})
}

// configureIntents subscribes to guild messages and their content, and to
// members so the guarded bot can be found in state.
func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsMessageContent
}

// onReady is called when the bot is ready
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	presence := b.cfg.Presence
	if presence == "" {
		presence = version.Presence()
	}
	err := s.UpdateStatusComplex(discordgo.UpdateStatusData{
		Status: string(discordgo.StatusOnline),
		Activities: []*discordgo.Activity{{
			Name:  "Custom Status",
			Type:  discordgo.ActivityTypeCustom,
			State: "🖥️ " + presence,
		}},
	})
	if err != nil {
		log.Println("[WARN] Failed to set presence:", err)
	}

	for _, g := range r.Guilds {
		b.setupGuild(s, g.ID, g.Name)
	}

	log.Printf("[INFO] ✅ Discord bot %v is running.", r.User.Username)
}

// onGuildCreate is called when the bot joins a guild or a guild becomes available.
func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	log.Printf("[INFO] Guild available: %s (%s)", g.Guild.ID, g.Guild.Name)
	b.setupGuild(s, g.Guild.ID, g.Guild.Name)
}

// setupGuild leaves blacklisted guilds and registers slash commands in the rest.
func (b *Bot) setupGuild(s *discordgo.Session, guildID, name string) {
	if b.cfg.IsGuildBlacklisted(guildID) {
		log.Printf("[INFO] Leaving blacklisted guild: %s (%s)", guildID, name)
		if err := s.GuildLeave(guildID); err != nil {
			log.Printf("[ERR] Failed to leave guild %s: %v", guildID, err)
		}
		return
	}
	if !b.cfg.InitSlashCommands {
		return
	}
	if err := b.startCommandSync(guildID, false); errors.Is(err, jobmgr.ErrRunning) {
		log.Printf("[DEBUG] Slash commands for guild %s are already being registered", guildID)
	}
}

// onMessageCreate hands every guild message to the lock engine.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.GuildID == "" {
		return
	}
	if s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}
	b.currentEngine().HandleInbound(b.ctx, m.GuildID, m.ChannelID, m.Author.ID, m.Content)
}

// onInteractionCreate dispatches slash commands and message components
// through the command registry.
func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		data := &command.SlashInteractionContext{
			Session:   s,
			Event:     i,
			Engine:    b.currentEngine(),
			Config:    b.cfg,
			Responder: DefaultResponder,
			Logger:    cmdLogger{store: b.storage},
			History:   b.storage,
			Runtime:   b,
		}
		err := cmd.DefaultRegistry.Run(b.ctx, &cmd.Invocation{Key: name, Data: data})
		switch {
		case errors.Is(err, cmd.ErrUnknownCommand):
			log.Printf("[WARN] Unknown command: %s", name)
		case err != nil:
			log.Printf("[ERR] Error running slash command /%s: %v", name, err)
			_ = RespondEmbedEphemeral(s, i, &discordgo.MessageEmbed{Description: fmt.Sprintf("Error running slash command: %v", err)})
		}

	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		data := &command.ComponentInteractionContext{
			Session:   s,
			Event:     i,
			Engine:    b.currentEngine(),
			Config:    b.cfg,
			Responder: DefaultResponder,
			Logger:    cmdLogger{store: b.storage},
		}
		err := cmd.DefaultRegistry.Run(b.ctx, &cmd.Invocation{Key: customID, Data: data})
		switch {
		case errors.Is(err, cmd.ErrUnknownCommand):
			log.Printf("[WARN] No matching component for customID: %s", customID)
		case err != nil:
			log.Printf("[ERR] Error running component %s: %v", customID, err)
		}

	default:
		log.Printf("[DEBUG] Unhandled interaction type: %d", i.Type)
	}
}
