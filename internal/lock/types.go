package lock

import (
	"fmt"
	"strings"
	"time"
)

// Category is the kind of ping that requested a lock.
type Category int

const (
	CategoryNone Category = iota
	CategoryShiny
	CategoryRare
	CategoryRegional
	CategoryCollection
)

var categoryNames = map[Category]string{
	CategoryNone:       "none",
	CategoryShiny:      "shiny",
	CategoryRare:       "rare",
	CategoryRegional:   "regional",
	CategoryCollection: "collection",
}

// Categories returns the configurable categories in display order.
func Categories() []Category {
	return []Category{CategoryShiny, CategoryRare, CategoryRegional, CategoryCollection}
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Title is the capitalised name used in channel notices and settings output.
func (c Category) Title() string {
	name := c.String()
	return strings.ToUpper(name[:1]) + name[1:]
}

// ParseCategory resolves a category by its lowercase name.
func ParseCategory(name string) (Category, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range Categories() {
		if categoryNames[c] == name {
			return c, nil
		}
	}
	return CategoryNone, fmt.Errorf("unknown category %q", name)
}

func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Policy decides what happens once a countdown for a category expires:
// a permanent lock, a lock for Seconds, or nothing at all when Seconds is 0.
type Policy struct {
	Permanent bool
	Seconds   int
}

// Permanent returns a policy that locks until someone unlocks manually.
func Permanent() Policy { return Policy{Permanent: true} }

// Timed returns a policy that auto-unlocks after seconds. Timed(0) ignores
// the category entirely.
func Timed(seconds int) Policy { return Policy{Seconds: seconds} }

// Ignored reports whether triggers of this policy should be dropped.
func (p Policy) Ignored() bool { return !p.Permanent && p.Seconds == 0 }

// Duration is the auto-unlock delay of a timed policy.
func (p Policy) Duration() time.Duration { return time.Duration(p.Seconds) * time.Second }

func (p Policy) String() string {
	switch {
	case p.Permanent:
		return "permanent"
	case p.Ignored():
		return "ignored"
	default:
		return fmt.Sprintf("%d seconds", p.Seconds)
	}
}

// MaxSeconds bounds lock durations and lock delays to a year.
const MaxSeconds = 366 * 24 * 60 * 60

// CheckSeconds rejects a negative or out of range duration; what names the
// setting in the error.
func CheckSeconds(what string, seconds int) error {
	switch {
	case seconds < 0:
		return fmt.Errorf("%w: %s cannot be negative", ErrInvalidPolicyRequest, what)
	case seconds > MaxSeconds:
		return fmt.Errorf("%w: %s cannot be more than %d seconds", ErrInvalidPolicyRequest, what, MaxSeconds)
	}
	return nil
}

// ParsePolicyRequest builds a policy from the optional duration and
// permanent flag supplied by an operator.
func ParsePolicyRequest(seconds *int, permanent bool) (Policy, error) {
	switch {
	case seconds != nil && permanent:
		return Policy{}, fmt.Errorf("%w: choose either a lock duration or a permanent lock", ErrInvalidPolicyRequest)
	case permanent:
		return Permanent(), nil
	case seconds == nil:
		return Policy{}, fmt.Errorf("%w: a lock duration or a permanent lock is required", ErrInvalidPolicyRequest)
	}
	if err := CheckSeconds("lock duration", *seconds); err != nil {
		return Policy{}, err
	}
	return Timed(*seconds), nil
}

// GuildConfig is the effective lock configuration of a tenant.
type GuildConfig struct {
	LockDelay int
	Policies  map[Category]Policy
}

// Policy returns the policy for c. Categories missing from the map are ignored.
func (g GuildConfig) Policy(c Category) Policy {
	return g.Policies[c]
}

// Delay is the countdown between a trigger and the lock.
func (g GuildConfig) Delay() time.Duration { return time.Duration(g.LockDelay) * time.Second }

// Clone returns a deep copy so callers never share the policy map.
func (g GuildConfig) Clone() GuildConfig {
	out := GuildConfig{LockDelay: g.LockDelay, Policies: make(map[Category]Policy, len(g.Policies))}
	for c, p := range g.Policies {
		out.Policies[c] = p
	}
	return out
}

// Phase is where a channel is in the lock lifecycle.
type Phase int

const (
	PhaseUnlocked Phase = iota
	PhaseCountdown
	PhaseLocked
)

func (p Phase) String() string {
	switch p {
	case PhaseCountdown:
		return "countdown"
	case PhaseLocked:
		return "locked"
	default:
		return "unlocked"
	}
}

// MessageRef points at a status message so it can be edited in place.
type MessageRef struct {
	ChannelID string
	MessageID string
}

func (r MessageRef) IsZero() bool { return r.MessageID == "" }

// State is the registry entry of a channel that is not unlocked.
type State struct {
	// ID changes on every new countdown or lock; timers carry the ID they
	// were armed for and do nothing once it no longer matches.
	ID        string
	TenantID  string
	ChannelID string
	Phase     Phase
	Category  Category
	Policy    Policy
	LockAt    time.Time
	UnlockAt  *time.Time // nil while pending or for permanent locks
	StatusRef MessageRef
}

// NoticeKind identifies a user-visible status update.
type NoticeKind int

const (
	NoticeCountdown NoticeKind = iota
	NoticeInterrupted
	NoticeSuperseded
	NoticeLockedUntil
	NoticeLockedIndefinitely
	NoticeLockFailed
	NoticeManualLocked
	NoticeAlreadyLocked
	NoticeUnlocked
	NoticeAutoUnlocked
	NoticeAlreadyUnlocked
	NoticeReleased
	NoticeParticipantMissing
	NoticePermissionDenied
)

// Affordance is the optional unlock button attached to a notice.
type Affordance int

const (
	AffordanceNone Affordance = iota
	AffordanceUnlock
	AffordanceUsed // rendered disabled
)

// Notice is what the engine asks a NotificationSink to show.
type Notice struct {
	Kind       NoticeKind
	Category   Category
	At         time.Time
	Affordance Affordance
}
