package config

import (
	"fmt"
	"log"
	"slices"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/swanny246/TuroApp/internal/lock"
)

// PoketwoID is the spawn bot locked out by default.
const PoketwoID = "716390085896962058"

type Config struct {
	Store

	DiscordToken          string   `env:"DISCORD_TOKEN,required,notEmpty"`
	GuardedBotID          string   `env:"GUARDED_BOT_ID" envDefault:"716390085896962058"`
	TrustedSenderIDs      []string `env:"TRUSTED_SENDER_IDS" envSeparator:","`
	DeveloperID           string   `env:"DEVELOPER_ID"`
	DiscordGuildBlacklist []string `env:"DISCORD_GUILD_BLACKLIST" envSeparator:","`
	InitSlashCommands     bool     `env:"INIT_SLASH_COMMANDS" envDefault:"true"`
	MetricsAddr           string   `env:"METRICS_ADDR"`
	GuardedBotName        string   `env:"GUARDED_BOT_NAME" envDefault:"Pokétwo"`
	Presence              string   `env:"BOT_PRESENCE"`
}

// Store is the part of the configuration needed to read and write guild
// settings. The operator CLI loads it without a Discord token.
type Store struct {
	StoragePath string `env:"STORAGE_PATH" envDefault:"datastore.json"`

	DefaultLockDelay              int  `env:"DEFAULT_LOCK_DELAY" envDefault:"5"`
	DefaultShinyLockDuration      int  `env:"DEFAULT_SHINY_LOCK_DURATION" envDefault:"3600"`
	DefaultRarePermanent          bool `env:"DEFAULT_RARE_PERMANENT" envDefault:"true"`
	DefaultRareLockDuration       int  `env:"DEFAULT_RARE_LOCK_DURATION" envDefault:"0"`
	DefaultRegionalLockDuration   int  `env:"DEFAULT_REGIONAL_LOCK_DURATION" envDefault:"3600"`
	DefaultCollectionLockDuration int  `env:"DEFAULT_COLLECTION_LOCK_DURATION" envDefault:"3600"`
}

// Load reads .env when present and parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, falling back to system environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadStore reads .env when present and parses only the storage settings.
func LoadStore() (*Store, error) {
	_ = godotenv.Load()

	var st Store
	if err := env.Parse(&st); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := st.validate(); err != nil {
		return nil, err
	}
	return &st, nil
}

// New is Load for process startup: it exits on invalid configuration.
func New() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatal("[ERR] ", err)
	}
	return cfg
}

func (c *Config) validate() error {
	if err := c.Store.validate(); err != nil {
		return err
	}
	if c.GuardedBotID == "" {
		return fmt.Errorf("GUARDED_BOT_ID is not set")
	}
	return nil
}

func (c *Store) validate() error {
	if c.DefaultLockDelay < 0 {
		return fmt.Errorf("DEFAULT_LOCK_DELAY cannot be negative")
	}
	for name, v := range map[string]int{
		"DEFAULT_SHINY_LOCK_DURATION":      c.DefaultShinyLockDuration,
		"DEFAULT_RARE_LOCK_DURATION":       c.DefaultRareLockDuration,
		"DEFAULT_REGIONAL_LOCK_DURATION":   c.DefaultRegionalLockDuration,
		"DEFAULT_COLLECTION_LOCK_DURATION": c.DefaultCollectionLockDuration,
	} {
		if v < 0 {
			return fmt.Errorf("%s cannot be negative", name)
		}
	}
	return nil
}

// Defaults is the configuration of a guild that never changed its settings.
func (c *Store) Defaults() lock.GuildConfig {
	rare := lock.Timed(c.DefaultRareLockDuration)
	if c.DefaultRarePermanent {
		rare = lock.Permanent()
	}
	return lock.GuildConfig{
		LockDelay: c.DefaultLockDelay,
		Policies: map[lock.Category]lock.Policy{
			lock.CategoryShiny:      lock.Timed(c.DefaultShinyLockDuration),
			lock.CategoryRare:       rare,
			lock.CategoryRegional:   lock.Timed(c.DefaultRegionalLockDuration),
			lock.CategoryCollection: lock.Timed(c.DefaultCollectionLockDuration),
		},
	}
}

// IsDeveloper reports whether userID is the configured developer.
func IsDeveloper(cfg *Config, userID string) bool {
	return cfg != nil && cfg.DeveloperID != "" && cfg.DeveloperID == userID
}

// IsGuildBlacklisted reports whether the bot should leave guildID.
func (c *Config) IsGuildBlacklisted(guildID string) bool {
	return slices.Contains(c.DiscordGuildBlacklist, guildID)
}
