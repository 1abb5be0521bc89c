package storage

import (
	"github.com/swanny246/TuroApp/internal/lock"
)

// Config merges the stored overrides of a guild over the defaults.
func (s *Storage) Config(guildID string) (lock.GuildConfig, error) {
	cfg := s.defaults.Clone()

	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return cfg, err
	}

	if record.LockDelay != nil {
		cfg.LockDelay = *record.LockDelay
	}
	for name, stored := range record.Policies {
		category, err := lock.ParseCategory(name)
		if err != nil {
			continue
		}
		cfg.Policies[category] = stored.policy()
	}
	return cfg, nil
}

// SetPolicy stores the policy of one category. A write error matches
// lock.ErrConfigWrite; the new value is in effect regardless.
func (s *Storage) SetPolicy(guildID string, category lock.Category, policy lock.Policy) error {
	return s.update(guildID, true, func(r *Record) {
		r.Policies[category.String()] = PolicyRecord{Value: policy.Seconds, PermanentLock: policy.Permanent}
	})
}

// SetLockDelay stores the countdown length of a guild.
func (s *Storage) SetLockDelay(guildID string, seconds int) error {
	return s.update(guildID, true, func(r *Record) {
		r.LockDelay = &seconds
	})
}

func (p PolicyRecord) policy() lock.Policy {
	if p.PermanentLock {
		return lock.Permanent()
	}
	return lock.Timed(p.Value)
}
