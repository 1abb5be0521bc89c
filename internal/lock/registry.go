package lock

import (
	"sort"
	"sync"
)

// Registry is the in-memory source of truth for channel lock states.
// A channel without an entry is unlocked. Entries do not survive restarts.
type Registry struct {
	mu     sync.RWMutex
	states map[string]State
}

func NewRegistry() *Registry {
	return &Registry{states: make(map[string]State)}
}

func (r *Registry) Get(channelID string) (State, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.states[channelID]
	return st, ok
}

// Upsert stores st under st.ChannelID. An unlocked state removes the entry.
func (r *Registry) Upsert(st State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st.Phase == PhaseUnlocked {
		delete(r.states, st.ChannelID)
		return
	}
	r.states[st.ChannelID] = st
}

func (r *Registry) Remove(channelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, channelID)
}

// Phase returns the channel's phase, PhaseUnlocked when absent.
func (r *Registry) Phase(channelID string) Phase {
	st, ok := r.Get(channelID)
	if !ok {
		return PhaseUnlocked
	}
	return st.Phase
}

// Snapshot returns every entry ordered by channel id.
func (r *Registry) Snapshot() []State {
	r.mu.RLock()
	out := make([]State, 0, len(r.states))
	for _, st := range r.states {
		out = append(out, st)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ChannelID < out[j].ChannelID })
	return out
}

// Count returns the number of channels in the given phase.
func (r *Registry) Count(phase Phase) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, st := range r.states {
		if st.Phase == phase {
			n++
		}
	}
	return n
}
