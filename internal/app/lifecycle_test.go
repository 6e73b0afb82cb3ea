package app_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"virtualta/internal/app"
)

func TestLifecycle_Transitions(t *testing.T) {
	lc := app.NewLifecycle()
	assert.Equal(t, app.StateUninitialized, lc.State())
	assert.False(t, lc.Ready())

	assert.True(t, lc.BeginLoading())
	assert.False(t, lc.BeginLoading(), "loading starts once")
	assert.Equal(t, app.StateLoading, lc.State())

	lc.SetLoaded(15)
	lc.MarkReady()
	assert.True(t, lc.Ready())
	assert.Equal(t, 15, lc.Loaded())
	assert.False(t, lc.BeginLoading())
	assert.Equal(t, "ready", lc.State().String())
}
