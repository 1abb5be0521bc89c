package discord

import (
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/swanny246/TuroApp/internal/storage"
)

// cmdLogger implements command.CommandLogger on top of guild storage.
type cmdLogger struct {
	store *storage.Storage
}

// LogCommand records a command execution to storage, resolving channel and
// guild names from state.
func (l cmdLogger) LogCommand(s *discordgo.Session, guildID, channelID, userID, username, commandName string) error {
	channel, err := s.State.Channel(channelID)
	if err != nil {
		channel, err = s.Channel(channelID)
		if err != nil {
			log.Println("[WARN] Failed to fetch channel:", err)
		}
	}
	channelName := ""
	if channel != nil {
		channelName = channel.Name
	}

	guild, err := s.State.Guild(guildID)
	if err != nil {
		guild, err = s.Guild(guildID)
		if err != nil {
			log.Println("[WARN] Failed to fetch guild:", err)
		}
	}
	guildName := ""
	if guild != nil {
		guildName = guild.Name
	}

	return l.store.AppendCommandToHistory(guildID, storage.CommandHistoryRecord{
		ChannelID:   channelID,
		ChannelName: channelName,
		GuildName:   guildName,
		UserID:      userID,
		Username:    username,
		Command:     commandName,
		Datetime:    time.Now(),
	})
}
