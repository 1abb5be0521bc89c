package command

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

// UnlockButtonID is the custom id of the unlock button. The prefix before
// the colon names the command that handles it.
const UnlockButtonID = "lock:unlock"

// Timestamp renders t as a Discord timestamp. style is one of the Discord
// format letters ("R" relative, "f" short date time); empty uses the
// client default.
func Timestamp(t time.Time, style string) string {
	if style == "" {
		return fmt.Sprintf("<t:%d>", t.Unix())
	}
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), style)
}

// Options flattens command options by name.
func Options(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	out := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		out[opt.Name] = opt
	}
	return out
}
