package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestDiffCommands(t *testing.T) {
	lockDef := &discordgo.ApplicationCommand{Name: "lock", Description: "Locks"}
	unlockDef := &discordgo.ApplicationCommand{Name: "unlock", Description: "Unlocks"}

	remote := []*discordgo.ApplicationCommand{
		{ID: "1", Name: "lock", Description: "Locks"},
		{ID: "2", Name: "purge", Description: "Old"},
	}
	cached := map[string]string{"lock": hashCommand(lockDef)}

	obsolete, changed, hashes := diffCommands(remote, []*discordgo.ApplicationCommand{lockDef, unlockDef}, cached)

	assert.Len(t, obsolete, 1)
	assert.Equal(t, "purge", obsolete[0].Name)
	assert.Equal(t, []*discordgo.ApplicationCommand{unlockDef}, changed)
	assert.Len(t, hashes, 2)
}

func TestHashCommandIgnoresOptionOrder(t *testing.T) {
	a := &discordgo.ApplicationCommand{Name: "x", Options: []*discordgo.ApplicationCommandOption{{Name: "a"}, {Name: "b"}}}
	b := &discordgo.ApplicationCommand{Name: "x", Options: []*discordgo.ApplicationCommandOption{{Name: "b"}, {Name: "a"}}}
	assert.Equal(t, hashCommand(a), hashCommand(b))

	c := &discordgo.ApplicationCommand{Name: "x", Description: "changed", Options: a.Options}
	assert.NotEqual(t, hashCommand(a), hashCommand(c))

	bounded := &discordgo.ApplicationCommand{Name: "x", Options: []*discordgo.ApplicationCommandOption{{Name: "a", MaxValue: 60}, {Name: "b"}}}
	assert.NotEqual(t, hashCommand(a), hashCommand(bounded))
}
