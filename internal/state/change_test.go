// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package state_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/holomush/warden/internal/state"
)

func TestChange(t *testing.T) {
	assert.True(t, state.Changed.IsChanged())
	assert.False(t, state.Changed.IsUnchanged())
	assert.True(t, state.Unchanged.IsUnchanged())
	assert.Equal(t, "changed", state.Changed.String())
	assert.Equal(t, "unchanged", state.Unchanged.String())
}

func TestChange_Or(t *testing.T) {
	assert.Equal(t, state.Changed, state.Unchanged.Or(state.Changed))
	assert.Equal(t, state.Changed, state.Changed.Or(state.Unchanged))
	assert.Equal(t, state.Unchanged, state.Unchanged.Or(state.Unchanged))
}

func TestValueOf(t *testing.T) {
	assert.Equal(t, state.Changed, state.ValueOf(true))
	assert.Equal(t, state.Unchanged, state.ValueOf(false))
}
