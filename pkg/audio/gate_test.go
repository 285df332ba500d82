package audio

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_StartsLocked(t *testing.T) {
	var opens int32
	g := NewGate(opener(&fakeDevice{}, &opens), DefaultFormat)

	assert.False(t, g.IsUnlocked())
	_, ok := g.Device()
	assert.False(t, ok)
	assert.Zero(t, opens, "device is constructed lazily")
}

func TestGate_UnlockPrimesOnceAndStaysUnlocked(t *testing.T) {
	var opens int32
	dev := &fakeDevice{}
	g := NewGate(opener(dev, &opens), DefaultFormat)

	require.True(t, g.Unlock(context.Background()))
	require.True(t, g.Unlock(context.Background()))

	assert.True(t, g.IsUnlocked())
	assert.EqualValues(t, 1, opens)
	assert.Equal(t, 1, dev.plays(), "one primer")
	d, ok := g.Device()
	require.True(t, ok)
	assert.Same(t, dev, d)
}

func TestGate_FailedResumeStaysLockedAndRetries(t *testing.T) {
	var opens int32
	dev := &fakeDevice{resumeErr: errBlocked}
	g := NewGate(opener(dev, &opens), DefaultFormat)

	assert.False(t, g.Unlock(context.Background()))
	assert.False(t, g.IsUnlocked())

	dev.setResumeErr(nil)
	assert.True(t, g.Unlock(context.Background()))
	assert.EqualValues(t, 1, opens, "device reused across attempts")
	assert.Equal(t, 2, dev.resumes)
}

func TestGate_OpenFailureStaysLocked(t *testing.T) {
	g := NewGate(func(context.Context, Format) (Device, error) {
		return nil, errors.New("no output device")
	}, DefaultFormat)

	assert.False(t, g.Unlock(context.Background()))
	assert.False(t, g.IsUnlocked())
}

func TestGate_AutoUnlockRemovesAllListenersOnSuccess(t *testing.T) {
	dev := &fakeDevice{resumeErr: errBlocked}
	g := NewGate(opener(dev, nil), DefaultFormat)
	bus := NewInteractions()

	g.InstallAutoUnlock(context.Background(), bus)
	require.Equal(t, len(UnlockKinds), bus.Listeners())

	bus.Emit(TouchStart)
	assert.False(t, g.IsUnlocked())
	assert.Equal(t, len(UnlockKinds), bus.Listeners(), "listeners stay after a failure")

	dev.setResumeErr(nil)
	bus.Emit(KeyDown)
	assert.True(t, g.IsUnlocked())
	assert.Zero(t, bus.Listeners(), "first success removes every listener")

	bus.Emit(MouseDown)
	assert.Equal(t, 2, dev.resumes, "no further attempts after removal")
}

func TestGate_UninstallBeforeGesture(t *testing.T) {
	g := NewGate(opener(&fakeDevice{}, nil), DefaultFormat)
	bus := NewInteractions()

	uninstall := g.InstallAutoUnlock(context.Background(), bus)
	uninstall()
	uninstall()

	bus.Emit(PointerDown)
	assert.False(t, g.IsUnlocked())
	assert.Zero(t, bus.Listeners())
}
