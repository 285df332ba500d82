// Package config loads the application configuration with precedence
// environment > .env > YAML file > defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/borgmon/reminder-clock/pkg/logging"
	"github.com/borgmon/reminder-clock/pkg/models"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "REMINDER_"

// ErrInvalid wraps every validation failure returned by Load.
var ErrInvalid = errors.New("invalid config")

// Load reads path (a missing file is fine), then a .env file next to the
// working directory, then REMINDER_* variables, and validates the result.
func Load(path string) (models.Config, error) {
	cfg := models.Defaults()

	if path != "" {
		if err := mergeFile(&cfg, path); err != nil {
			return cfg, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	if err := mergeEnv(&cfg); err != nil {
		return cfg, err
	}

	if err := Validate(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks cfg and resolves its timezone.
func Validate(cfg *models.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("%w: timezone %q: %w", ErrInvalid, cfg.Timezone, err)
	}
	return nil
}

func mergeFile(cfg *models.Config, path string) error {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger := logging.WithComponent("config")
		logger.Debug().Str("path", path).Msg("config file not found, using defaults")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

type envVar struct {
	key   string
	apply func(string) error
}

func mergeEnv(cfg *models.Config) error {
	vars := []envVar{
		{"TIMEZONE", setString(&cfg.Timezone)},
		{"AUTO_START", setBool(&cfg.AutoStart)},
		{"HOLD_TIME_SECONDS", setInt(&cfg.HoldTimeSeconds)},
		{"LOG_LEVEL", setString(&cfg.Log.Level)},
		{"METRICS_ADDR", setString(&cfg.Metrics.Addr)},
		{"TOAST_DURATION_MS", setInt(&cfg.Toast.DurationMS)},
		{"SOUND_ALARM", setString(&cfg.Sounds.Alarm)},
		{"SOUND_SET", setString(&cfg.Sounds.Set)},
		{"SOUND_COMPLETE", setString(&cfg.Sounds.Complete)},
		{"SOUNDS_DIR", setString(&cfg.Sounds.Dir)},
		{"SOUNDS_BASE_URL", setString(&cfg.Sounds.BaseURL)},
		{"AUDIO_SAMPLE_RATE", setInt(&cfg.Audio.SampleRate)},
		{"AUDIO_CHANNELS", setInt(&cfg.Audio.Channels)},
		{"CLOCK_FINE", setDuration(&cfg.Clock.Fine)},
		{"CLOCK_COARSE", setDuration(&cfg.Clock.Coarse)},
		{"PREFETCH_CONCURRENCY", setInt(&cfg.Prefetch.Concurrency)},
		{"PREFETCH_LIMIT", setInt(&cfg.Prefetch.Limit)},
		{"PREFETCH_BASE_URL", setString(&cfg.Prefetch.BaseURL)},
		{"PREFETCH_CACHE_DIR", setString(&cfg.Prefetch.CacheDir)},
		{"BACKGROUNDS_MANIFEST", setString(&cfg.Backgrounds.Manifest)},
	}

	logger := logging.WithComponent("config")
	for _, v := range vars {
		key := EnvPrefix + v.key
		value, ok := os.LookupEnv(key)
		if !ok || value == "" {
			continue
		}
		if err := v.apply(value); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalid, key, err)
		}
		logger.Debug().Str("key", key).Str("source", "environment").Msg("using environment variable")
	}
	return nil
}

func setString(dst *string) func(string) error {
	return func(v string) error {
		*dst = v
		return nil
	}
}

func setInt(dst *int) func(string) error {
	return func(v string) error {
		i, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst = i
		return nil
	}
}

func setBool(dst *bool) func(string) error {
	return func(v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*dst = b
		return nil
	}
}

func setDuration(dst *time.Duration) func(string) error {
	return func(v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*dst = d
		return nil
	}
}
