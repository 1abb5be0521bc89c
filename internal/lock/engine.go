// Package lock implements the channel lock lifecycle: a keyword ping
// starts a countdown, a catch by the guarded bot interrupts it, and
// otherwise the guarded bot is locked out of the channel until a timed
// auto-unlock or a manual unlock lets it back in.
//
// All transitions of one channel are serialised by a per-channel mutex.
// Timer callbacks take the same mutex and re-validate the registry entry,
// so a timer that lost a race against a newer action does nothing.
package lock

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/swanny246/TuroApp/internal/metrics"
	"github.com/swanny246/TuroApp/pkg/clock"
)

// ConfigStore holds per-guild settings.
type ConfigStore interface {
	Config(tenantID string) (GuildConfig, error)
	SetPolicy(tenantID string, category Category, policy Policy) error
	SetLockDelay(tenantID string, seconds int) error
}

// PermissionGateway changes the guarded bot's access to a channel.
// Implementations return errors matching ErrParticipantNotFound or
// ErrPermissionDenied where applicable.
type PermissionGateway interface {
	Revoke(ctx context.Context, tenantID, channelID, participantID string) error
	Grant(ctx context.Context, tenantID, channelID, participantID string) error
}

// NotificationSink shows notices in a channel.
type NotificationSink interface {
	Post(ctx context.Context, channelID string, n Notice) (MessageRef, error)
	Edit(ctx context.Context, ref MessageRef, n Notice) error
}

// Options configures an Engine.
type Options struct {
	// GuardedID is the user id of the bot that gets locked out.
	GuardedID string
	// TrustedIDs may trigger locks.
	TrustedIDs []string
	Clock      clock.Clock
}

type Engine struct {
	classifier *Classifier
	config     ConfigStore
	gateway    PermissionGateway
	sink       NotificationSink
	registry   *Registry
	countdowns *CountdownScheduler
	unlocks    *AutoUnlockScheduler
	clock      clock.Clock
	guardedID  string

	// base is used by timer callbacks, which outlive the triggering call.
	base   context.Context
	cancel context.CancelFunc

	locks channelLocks
}

func NewEngine(opts Options, config ConfigStore, gateway PermissionGateway, sink NotificationSink) *Engine {
	c := opts.Clock
	if c == nil {
		c = clock.Real()
	}
	base, cancel := context.WithCancel(context.Background())
	return &Engine{
		classifier: NewClassifier(opts.TrustedIDs, opts.GuardedID),
		config:     config,
		gateway:    gateway,
		sink:       sink,
		registry:   NewRegistry(),
		countdowns: NewCountdownScheduler(c),
		unlocks:    NewAutoUnlockScheduler(c),
		clock:      c,
		guardedID:  opts.GuardedID,
		base:       base,
		cancel:     cancel,
		locks:      channelLocks{m: make(map[string]*channelLock)},
	}
}

// Stop cancels every pending timer. Channels keep their current Discord
// permissions; the registry is not persisted.
func (e *Engine) Stop() {
	e.countdowns.Stop()
	e.unlocks.Stop()
	e.cancel()
}

// Registry exposes the read side of the lock registry.
func (e *Engine) Registry() *Registry { return e.registry }

// Status returns the channel's registry entry.
func (e *Engine) Status(channelID string) (State, bool) { return e.registry.Get(channelID) }

// HandleInbound inspects every guild message: catch confirmations may
// interrupt a countdown, trusted pings may start one.
func (e *Engine) HandleInbound(ctx context.Context, tenantID, channelID, senderID, text string) {
	if e.classifier.IsInterrupt(senderID, text) {
		e.interrupt(ctx, channelID)
		return
	}

	category, ok := e.classifier.Classify(senderID, text)
	if !ok {
		return
	}

	unlock := e.locks.lock(channelID)
	defer unlock()

	if st, ok := e.registry.Get(channelID); ok && st.Phase == PhaseLocked {
		log.Printf("[INFO] %s - %s - channel already locked, ignoring %s ping", tenantID, channelID, category)
		e.post(ctx, channelID, Notice{Kind: NoticeAlreadyLocked})
		return
	}

	cfg, err := e.config.Config(tenantID)
	if err != nil {
		log.Printf("[ERR] %s - %s - failed to load settings: %v", tenantID, channelID, err)
		return
	}

	policy := cfg.Policy(category)
	if policy.Ignored() {
		log.Printf("[INFO] %s - %s - ignoring %s ping", tenantID, channelID, category)
		return
	}

	metrics.Trigger(category.String())
	e.startCountdown(ctx, tenantID, channelID, category, policy, cfg.Delay())
}

// startCountdown must be called with the channel lock held.
func (e *Engine) startCountdown(ctx context.Context, tenantID, channelID string, category Category, policy Policy, delay time.Duration) {
	if prev, ok := e.registry.Get(channelID); ok && prev.Phase == PhaseCountdown {
		e.countdowns.Cancel(channelID)
		e.edit(ctx, prev.StatusRef, Notice{Kind: NoticeSuperseded})
		log.Printf("[INFO] %s - %s - restarting pending countdown", tenantID, channelID)
	}

	deadline := e.clock.Now().Add(delay)
	ref := e.post(ctx, channelID, Notice{Kind: NoticeCountdown, Category: category, At: deadline})

	st := State{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		ChannelID: channelID,
		Phase:     PhaseCountdown,
		Category:  category,
		Policy:    policy,
		LockAt:    deadline,
		StatusRef: ref,
	}
	e.registry.Upsert(st)
	e.observe()

	id := st.ID
	e.countdowns.Start(channelID, deadline, func() { e.activate(channelID, id) })
	log.Printf("[INFO] %s - %s - %s ping: locking in %v, policy %s", tenantID, channelID, category, delay, policy)
}

func (e *Engine) interrupt(ctx context.Context, channelID string) {
	unlock := e.locks.lock(channelID)
	defer unlock()

	st, ok := e.registry.Get(channelID)
	if !ok || st.Phase != PhaseCountdown {
		return
	}
	if !e.clock.Now().Before(st.LockAt) {
		log.Printf("[DEBUG] %s - %s - catch arrived after the countdown deadline, not interrupting", st.TenantID, channelID)
		return
	}

	e.countdowns.Cancel(channelID)
	e.registry.Remove(channelID)
	e.observe()
	metrics.Interrupt()

	e.edit(ctx, st.StatusRef, Notice{Kind: NoticeInterrupted, Category: st.Category})
	log.Printf("[INFO] %s - %s - interrupted by a catch, not locking the channel", st.TenantID, channelID)
}

// activate is the countdown callback.
func (e *Engine) activate(channelID, id string) {
	ctx := e.base
	unlock := e.locks.lock(channelID)
	defer unlock()

	st, ok := e.registry.Get(channelID)
	if !ok || st.ID != id || st.Phase != PhaseCountdown {
		metrics.StaleTimer("countdown")
		log.Printf("[DEBUG] %s - countdown fired after being superseded", channelID)
		return
	}

	if err := e.gateway.Revoke(ctx, st.TenantID, channelID, e.guardedID); err != nil {
		if !errors.Is(err, ErrParticipantNotFound) {
			metrics.LockFailed("revoke")
			log.Printf("[ERR] %s - %s - failed to lock channel: %v", st.TenantID, channelID, err)
			e.post(ctx, channelID, Notice{Kind: NoticePermissionDenied})
			e.edit(ctx, st.StatusRef, Notice{Kind: NoticeLockFailed, Category: st.Category})
			e.registry.Remove(channelID)
			e.observe()
			return
		}
		log.Printf("[WARN] %s - %s - guarded bot not found, recording lock anyway", st.TenantID, channelID)
		e.post(ctx, channelID, Notice{Kind: NoticeParticipantMissing})
	}

	st.Phase = PhaseLocked
	notice := Notice{Kind: NoticeLockedIndefinitely, Category: st.Category, Affordance: AffordanceUnlock}
	if !st.Policy.Permanent {
		unlockAt := e.clock.Now().Add(st.Policy.Duration())
		st.UnlockAt = &unlockAt
		notice.Kind = NoticeLockedUntil
		notice.At = unlockAt
	}
	st.StatusRef = e.show(ctx, channelID, st.StatusRef, notice)
	e.registry.Upsert(st)
	e.observe()
	metrics.Locked("countdown")

	if st.UnlockAt != nil {
		unlockAt := *st.UnlockAt
		e.unlocks.Schedule(channelID, unlockAt, func() { e.autoUnlock(channelID, id, unlockAt) })
		log.Printf("[INFO] %s - %s - channel locked until %s", st.TenantID, channelID, unlockAt.Format(time.RFC3339))
		return
	}
	log.Printf("[INFO] %s - %s - channel locked until unlocked manually", st.TenantID, channelID)
}

// autoUnlock is the auto-unlock callback.
func (e *Engine) autoUnlock(channelID, id string, unlockAt time.Time) {
	ctx := e.base
	unlock := e.locks.lock(channelID)
	defer unlock()

	st, ok := e.registry.Get(channelID)
	if !ok || st.ID != id || st.UnlockAt == nil || !st.UnlockAt.Equal(unlockAt) {
		metrics.StaleTimer("auto-unlock")
		log.Printf("[INFO] %s - auto-unlock was scheduled, but another lock action occurred", channelID)
		return
	}

	if err := e.gateway.Grant(ctx, st.TenantID, channelID, e.guardedID); err != nil {
		if !errors.Is(err, ErrParticipantNotFound) {
			metrics.LockFailed("grant")
			log.Printf("[ERR] %s - %s - auto-unlock failed: %v", st.TenantID, channelID, err)
			e.post(ctx, channelID, Notice{Kind: NoticePermissionDenied})
			return
		}
		e.post(ctx, channelID, Notice{Kind: NoticeParticipantMissing})
	}

	e.registry.Remove(channelID)
	e.observe()
	metrics.Unlocked("auto")

	e.edit(ctx, st.StatusRef, Notice{Kind: NoticeReleased, Category: st.Category, Affordance: AffordanceUsed})
	e.post(ctx, channelID, Notice{Kind: NoticeAutoUnlocked})
	log.Printf("[INFO] %s - %s - channel was unlocked due to inactivity", st.TenantID, channelID)
}

// ManualLock locks the channel immediately and until someone unlocks it,
// superseding any countdown or auto-unlock.
func (e *Engine) ManualLock(ctx context.Context, tenantID, channelID string) error {
	unlock := e.locks.lock(channelID)
	defer unlock()

	if err := e.gateway.Revoke(ctx, tenantID, channelID, e.guardedID); err != nil {
		if !errors.Is(err, ErrParticipantNotFound) {
			metrics.LockFailed("revoke")
			return fmt.Errorf("lock channel: %w", err)
		}
		log.Printf("[WARN] %s - %s - guarded bot not found, recording lock anyway", tenantID, channelID)
		e.post(ctx, channelID, Notice{Kind: NoticeParticipantMissing})
	}

	e.supersede(ctx, channelID)

	ref := e.post(ctx, channelID, Notice{Kind: NoticeManualLocked, Affordance: AffordanceUnlock})
	e.registry.Upsert(State{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		ChannelID: channelID,
		Phase:     PhaseLocked,
		Policy:    Permanent(),
		LockAt:    e.clock.Now(),
		StatusRef: ref,
	})
	e.observe()
	metrics.Locked("manual")
	log.Printf("[INFO] %s - %s - channel manually locked", tenantID, channelID)
	return nil
}

// ManualUnlock lets the guarded bot back in. It reports false, after
// posting a notice, when the channel was not locked or counting down.
func (e *Engine) ManualUnlock(ctx context.Context, tenantID, channelID string) (bool, error) {
	return e.release(ctx, tenantID, channelID, MessageRef{})
}

// UnlockButtonPressed behaves like ManualUnlock and additionally disables
// the pressed button so it cannot be used twice.
func (e *Engine) UnlockButtonPressed(ctx context.Context, tenantID, channelID string, pressed MessageRef) (bool, error) {
	return e.release(ctx, tenantID, channelID, pressed)
}

func (e *Engine) release(ctx context.Context, tenantID, channelID string, pressed MessageRef) (bool, error) {
	unlock := e.locks.lock(channelID)
	defer unlock()

	st, ok := e.registry.Get(channelID)
	if !ok {
		e.disable(ctx, pressed, MessageRef{}, CategoryNone)
		e.post(ctx, channelID, Notice{Kind: NoticeAlreadyUnlocked})
		return false, nil
	}

	if err := e.gateway.Grant(ctx, tenantID, channelID, e.guardedID); err != nil {
		if !errors.Is(err, ErrParticipantNotFound) {
			metrics.LockFailed("grant")
			return false, fmt.Errorf("unlock channel: %w", err)
		}
		log.Printf("[WARN] %s - %s - guarded bot not found while unlocking", tenantID, channelID)
		e.post(ctx, channelID, Notice{Kind: NoticeParticipantMissing})
	}

	e.countdowns.Cancel(channelID)
	e.unlocks.Cancel(channelID)
	e.registry.Remove(channelID)
	e.observe()

	if st.Phase == PhaseCountdown {
		e.edit(ctx, st.StatusRef, Notice{Kind: NoticeSuperseded, Category: st.Category})
		e.disable(ctx, pressed, st.StatusRef, st.Category)
	} else {
		e.disable(ctx, pressed, MessageRef{}, st.Category)
		if st.StatusRef != pressed {
			e.disable(ctx, st.StatusRef, MessageRef{}, st.Category)
		}
	}

	source := "manual"
	if !pressed.IsZero() {
		source = "button"
	}
	metrics.Unlocked(source)
	e.post(ctx, channelID, Notice{Kind: NoticeUnlocked})
	log.Printf("[INFO] %s - %s - channel unlocked (%s)", tenantID, channelID, source)
	return true, nil
}

// supersede drops the channel's countdown and auto-unlock, closing the
// previous status message. Must be called with the channel lock held.
func (e *Engine) supersede(ctx context.Context, channelID string) {
	e.countdowns.Cancel(channelID)
	e.unlocks.Cancel(channelID)

	prev, ok := e.registry.Get(channelID)
	if !ok {
		return
	}
	e.registry.Remove(channelID)
	e.edit(ctx, prev.StatusRef, Notice{Kind: NoticeSuperseded, Category: prev.Category})
}

// Settings returns the effective configuration of a guild.
func (e *Engine) Settings(tenantID string) (GuildConfig, error) {
	return e.config.Config(tenantID)
}

// SetPolicy changes the policy for future triggers of category. Running
// countdowns and locks keep the policy they started with.
func (e *Engine) SetPolicy(tenantID string, category Category, policy Policy) error {
	if category == CategoryNone {
		return fmt.Errorf("%w: unknown category", ErrInvalidPolicyRequest)
	}
	if policy.Permanent && policy.Seconds != 0 {
		return fmt.Errorf("%w: %+v", ErrInvalidPolicyRequest, policy)
	}
	if err := CheckSeconds("lock duration", policy.Seconds); err != nil {
		return err
	}
	return e.config.SetPolicy(tenantID, category, policy)
}

// SetLockDelay changes the countdown length for future triggers.
func (e *Engine) SetLockDelay(tenantID string, seconds int) error {
	if err := CheckSeconds("lock delay", seconds); err != nil {
		return err
	}
	return e.config.SetLockDelay(tenantID, seconds)
}

// disable closes the unlock button on ref unless ref is zero or skip.
func (e *Engine) disable(ctx context.Context, ref, skip MessageRef, category Category) {
	if ref.IsZero() || ref == skip {
		return
	}
	e.edit(ctx, ref, Notice{Kind: NoticeReleased, Category: category, Affordance: AffordanceUsed})
}

// show edits the status message in place, posting a new one when there is
// none or it can no longer be edited.
func (e *Engine) show(ctx context.Context, channelID string, ref MessageRef, n Notice) MessageRef {
	if ref.IsZero() {
		return e.post(ctx, channelID, n)
	}
	err := e.sink.Edit(ctx, ref, n)
	if err == nil {
		return ref
	}
	log.Printf("[WARN] %s - failed to edit status message, posting a new one: %v", channelID, err)
	return e.post(ctx, channelID, n)
}

func (e *Engine) post(ctx context.Context, channelID string, n Notice) MessageRef {
	ref, err := e.sink.Post(ctx, channelID, n)
	if err != nil {
		log.Printf("[ERR] %s - failed to post notice: %v", channelID, err)
		return MessageRef{}
	}
	return ref
}

func (e *Engine) edit(ctx context.Context, ref MessageRef, n Notice) {
	if ref.IsZero() {
		return
	}
	if err := e.sink.Edit(ctx, ref, n); err != nil {
		log.Printf("[WARN] %s - failed to edit status message %s: %v", ref.ChannelID, ref.MessageID, err)
	}
}

func (e *Engine) observe() {
	metrics.SetChannels(e.registry.Count(PhaseCountdown), e.registry.Count(PhaseLocked))
}

// channelLocks hands out one mutex per channel id. An entry lives only
// while someone holds or waits for it.
type channelLocks struct {
	mu sync.Mutex
	m  map[string]*channelLock
}

type channelLock struct {
	sync.Mutex
	refs int
}

func (l *channelLocks) lock(channelID string) func() {
	l.mu.Lock()
	m, ok := l.m[channelID]
	if !ok {
		m = &channelLock{}
		l.m[channelID] = m
	}
	m.refs++
	l.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()

		l.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(l.m, channelID)
		}
		l.mu.Unlock()
	}
}

func (l *channelLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}
