package storage

// AppendCommandToHistory records a command invocation, keeping the most
// recent entries only.
func (s *Storage) AppendCommandToHistory(guildID string, command CommandHistoryRecord) error {
	return s.update(guildID, false, func(r *Record) {
		r.CommandsHistory = append(r.CommandsHistory, command)
		if len(r.CommandsHistory) > commandHistoryLimit {
			r.CommandsHistory = r.CommandsHistory[len(r.CommandsHistory)-commandHistoryLimit:]
		}
	})
}

func (s *Storage) FetchCommandHistory(guildID string) ([]CommandHistoryRecord, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.CommandsHistory, nil
}

// CommandHashes returns the definition hashes of the slash commands last
// registered in a guild.
func (s *Storage) CommandHashes(guildID string) (map[string]string, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.CommandHashes, nil
}

// SetCommandHashes replaces the registered command hashes of a guild.
func (s *Storage) SetCommandHashes(guildID string, hashes map[string]string) error {
	return s.update(guildID, true, func(r *Record) {
		r.CommandHashes = make(map[string]string, len(hashes))
		for name, hash := range hashes {
			r.CommandHashes[name] = hash
		}
	})
}
