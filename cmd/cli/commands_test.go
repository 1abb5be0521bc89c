package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swanny246/TuroApp/internal/lock"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	storagePath = ""
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSetPolicyAndSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	out, err := run(t, "--storage", path, "set-policy", "g1", "shiny", "--duration", "120")
	require.NoError(t, err)
	assert.Equal(t, "shiny: 120 seconds\n", out)

	_, err = run(t, "--storage", path, "set-delay", "g1", "9")
	require.NoError(t, err)

	out, err = run(t, "--storage", path, "settings", "g1")
	require.NoError(t, err)
	assert.Contains(t, out, "lock delay: 9 seconds\n")
	assert.Contains(t, out, "shiny: 120 seconds\n")
	assert.Contains(t, out, "rare: permanent\n")

	out, err = run(t, "--storage", path, "guilds")
	require.NoError(t, err)
	assert.Equal(t, "g1\n", out)
}

func TestSetPolicyRejectsBothFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	_, err := run(t, "--storage", path, "set-policy", "g1", "rare", "--duration", "5", "--permanent")
	assert.ErrorIs(t, err, lock.ErrInvalidPolicyRequest)

	_, err = run(t, "--storage", path, "set-policy", "g1", "legendary", "--permanent")
	assert.ErrorContains(t, err, "unknown category")
}

func TestSetDelayRejectsOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	_, err := run(t, "--storage", path, "set-delay", "g1", "--", "-3")
	assert.ErrorIs(t, err, lock.ErrInvalidPolicyRequest)

	_, err = run(t, "--storage", path, "set-delay", "g1", "99999999999")
	assert.ErrorIs(t, err, lock.ErrInvalidPolicyRequest)
}
