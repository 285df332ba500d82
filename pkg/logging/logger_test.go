package logging

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestConfigure_LevelAppliedOnEveryCall(t *testing.T) {
	previous := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(previous) })

	// The first logger lookup initialises with defaults
	_ = WithComponent("test")

	Configure(Config{Level: "debug"})
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	Configure(Config{Level: "warn"})
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	// Empty and unparsable levels leave the current one alone
	Configure(Config{})
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	Configure(Config{Level: "loud"})
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}
