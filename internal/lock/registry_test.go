package lock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	r.Upsert(State{ChannelID: "b", Phase: PhaseLocked})
	r.Upsert(State{ChannelID: "a", Phase: PhaseCountdown})
	r.Upsert(State{ChannelID: "c", Phase: PhaseLocked})

	assert.Equal(t, PhaseCountdown, r.Phase("a"))
	assert.Equal(t, PhaseUnlocked, r.Phase("missing"))
	assert.Equal(t, 2, r.Count(PhaseLocked))

	snap := r.Snapshot()
	assert.Equal(t, []string{"a", "b", "c"}, []string{snap[0].ChannelID, snap[1].ChannelID, snap[2].ChannelID})

	r.Upsert(State{ChannelID: "b", Phase: PhaseUnlocked})
	_, ok := r.Get("b")
	assert.False(t, ok)

	r.Remove("c")
	assert.Len(t, r.Snapshot(), 1)
}

func TestRegistryReturnsCopies(t *testing.T) {
	r := NewRegistry()
	r.Upsert(State{ChannelID: "a", Phase: PhaseLocked, Category: CategoryRare})

	st, _ := r.Get("a")
	st.Phase = PhaseCountdown

	assert.Equal(t, PhaseLocked, r.Phase("a"))
}
