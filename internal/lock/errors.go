package lock

import "errors"

var (
	// ErrParticipantNotFound means the guarded bot is not a member of the guild.
	ErrParticipantNotFound = errors.New("guarded participant not found in guild")
	// ErrPermissionDenied means the bot may not edit the channel's overwrites.
	ErrPermissionDenied = errors.New("missing permission to manage channel access")
	// ErrConfigWrite means the settings were applied in memory but not persisted.
	ErrConfigWrite = errors.New("failed to persist guild settings")
	// ErrInvalidPolicyRequest rejects malformed policy changes before any write.
	ErrInvalidPolicyRequest = errors.New("invalid lock policy request")
)
