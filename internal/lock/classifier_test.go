package lock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	c := NewClassifier([]string{"pokename", " poketox "}, "poketwo")

	tests := []struct {
		name   string
		sender string
		text   string
		want   Category
		wantOK bool
	}{
		{"shiny", "pokename", "Shiny hunt pings: @Ash", CategoryShiny, true},
		{"collection", "poketox", "COLLECTION PINGS @Misty", CategoryCollection, true},
		{"rare", "pokename", "Rare ping: @Brock", CategoryRare, true},
		{"regional", "pokename", "regional ping @Gary", CategoryRegional, true},
		{"first keyword wins", "pokename", "rare ping and shiny hunt pings @x", CategoryShiny, true},
		{"needs mention", "pokename", "Shiny hunt pings: nobody", CategoryNone, false},
		{"untrusted sender", "someone", "Shiny hunt pings: @Ash", CategoryNone, false},
		{"no keyword", "pokename", "hello @Ash", CategoryNone, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.Classify(tt.sender, tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsInterrupt(t *testing.T) {
	c := NewClassifier([]string{"pokename"}, "poketwo")

	assert.True(t, c.IsInterrupt("poketwo", "Congratulations <@1>! You caught a Level 12 Pikachu!"))
	assert.False(t, c.IsInterrupt("poketwo", "congratulations! you caught a level 12 Pikachu!"))
	assert.False(t, c.IsInterrupt("poketwo", "Congratulations on your wedding"))
	assert.False(t, c.IsInterrupt("pokename", "Congratulations! You caught a Level 12 Pikachu!"))
	assert.False(t, NewClassifier(nil, "").IsInterrupt("", "Congratulations! You caught a Level 1"))

	assert.True(t, c.IsTrusted("pokename"))
	assert.False(t, c.IsTrusted("poketwo"))
}
