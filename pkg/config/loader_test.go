package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/borgmon/reminder-clock/pkg/logging"
	"github.com/borgmon/reminder-clock/pkg/models"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := Load(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)

	if diff := cmp.Diff(models.Defaults(), cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := writeFile(t, dir, "config.yaml", `
timezone: Europe/Berlin
toast:
  duration_ms: 2500
clock:
  fine: 500ms
prefetch:
  concurrency: 3
ical_sources:
  - id: work
    name: Work
    url: https://example.com/work.ics
`)
	writeFile(t, dir, ".env", "REMINDER_PREFETCH_LIMIT=9\nREMINDER_TOAST_DURATION_MS=1000\n")
	t.Setenv("REMINDER_TOAST_DURATION_MS", "1500")
	t.Cleanup(func() { os.Unsetenv("REMINDER_PREFETCH_LIMIT") })

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Europe/Berlin", cfg.Timezone)
	assert.Equal(t, 1500, cfg.Toast.DurationMS, "process env beats .env")
	assert.Equal(t, 1500*time.Millisecond, cfg.ToastDuration())
	assert.Equal(t, 500*time.Millisecond, cfg.Clock.Fine)
	assert.Equal(t, time.Minute, cfg.Clock.Coarse)
	assert.Equal(t, 3, cfg.Prefetch.Concurrency)
	assert.Equal(t, 9, cfg.Prefetch.Limit)
	require.Len(t, cfg.ICalSources, 1)
	assert.Equal(t, "Work", cfg.ICalSources[0].Name)
	assert.Equal(t, "alarm", cfg.Sounds.Alarm)
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := writeFile(t, dir, "config.yaml", "snooze_time: 4\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsNonYAML(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, err := Load(writeFile(t, dir, "config.json", "{}"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"REMINDER_TIMEZONE":             "Mars/Olympus",
		"REMINDER_PREFETCH_CONCURRENCY": "0",
		"REMINDER_AUDIO_CHANNELS":       "6",
		"REMINDER_AUDIO_SAMPLE_RATE":    "fast",
		"REMINDER_CLOCK_FINE":           "-1s",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(key, value)

			_, err := Load("")
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoad_LogLevelAppliedAfterLoad(t *testing.T) {
	previous := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(previous) })

	dir := t.TempDir()
	t.Chdir(dir)
	path := writeFile(t, dir, "config.yaml", "log:\n  level: warn\n")

	// Load logs through the shared logger before the level is known
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "warn", cfg.Log.Level)

	logging.Configure(logging.Config{Level: cfg.Log.Level})
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}

func TestLoad_LogLevelFromEnvironment(t *testing.T) {
	previous := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(previous) })

	t.Chdir(t.TempDir())
	t.Setenv(EnvPrefix+"LOG_LEVEL", "error")

	cfg, err := Load("")
	require.NoError(t, err)

	logging.Configure(logging.Config{Level: cfg.Log.Level})
	assert.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())
}
