package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swanny246/TuroApp/internal/lock"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("TRUSTED_SENDER_IDS", "111, 222")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "datastore.json", cfg.StoragePath)
	assert.Equal(t, PoketwoID, cfg.GuardedBotID)
	assert.Equal(t, 5, cfg.DefaultLockDelay)
	assert.True(t, cfg.InitSlashCommands)
	assert.Len(t, cfg.TrustedSenderIDs, 2)
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsNegativeDurations(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DEFAULT_SHINY_LOCK_DURATION", "-1")
	_, err := Load()
	assert.ErrorContains(t, err, "DEFAULT_SHINY_LOCK_DURATION")
}

func TestLoadStoreWithoutToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("STORAGE_PATH", "guilds.json")

	st, err := LoadStore()
	require.NoError(t, err)
	assert.Equal(t, "guilds.json", st.StoragePath)
	assert.Equal(t, 3600, st.DefaultShinyLockDuration)
}

func TestDefaults(t *testing.T) {
	cfg := &Config{Store: Store{
		DefaultLockDelay:              7,
		DefaultShinyLockDuration:      60,
		DefaultRarePermanent:          true,
		DefaultRegionalLockDuration:   0,
		DefaultCollectionLockDuration: 120,
	}}

	d := cfg.Defaults()
	assert.Equal(t, 7, d.LockDelay)
	assert.Equal(t, lock.Timed(60), d.Policy(lock.CategoryShiny))
	assert.Equal(t, lock.Permanent(), d.Policy(lock.CategoryRare))
	assert.True(t, d.Policy(lock.CategoryRegional).Ignored())
	assert.Equal(t, lock.Timed(120), d.Policy(lock.CategoryCollection))

	cfg.DefaultRarePermanent = false
	cfg.DefaultRareLockDuration = 30
	assert.Equal(t, lock.Timed(30), cfg.Defaults().Policy(lock.CategoryRare))
}

func TestIsDeveloperAndBlacklist(t *testing.T) {
	cfg := &Config{DeveloperID: "42", DiscordGuildBlacklist: []string{"g1"}}
	assert.True(t, IsDeveloper(cfg, "42"))
	assert.False(t, IsDeveloper(cfg, "43"))
	assert.False(t, IsDeveloper(nil, "42"))
	assert.True(t, cfg.IsGuildBlacklisted("g1"))
	assert.False(t, cfg.IsGuildBlacklisted("g2"))
}
