package models

import (
	"errors"
	"fmt"
	"time"
)

// Config holds application configuration
type Config struct {
	Timezone        string            `yaml:"timezone"`
	AutoStart       bool              `yaml:"auto_start"`
	HoldTimeSeconds int               `yaml:"hold_time_seconds"` // stop-button hold time
	Log             LogConfig         `yaml:"log"`
	Metrics         MetricsConfig     `yaml:"metrics"`
	Toast           ToastConfig       `yaml:"toast"`
	Sounds          SoundConfig       `yaml:"sounds"`
	Audio           AudioConfig       `yaml:"audio"`
	Clock           ClockConfig       `yaml:"clock"`
	Prefetch        PrefetchConfig    `yaml:"prefetch"`
	Backgrounds     BackgroundsConfig `yaml:"backgrounds"`
	ICalSources     []ICalSource      `yaml:"ical_sources"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig enables the /metrics listener when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type ToastConfig struct {
	DurationMS int `yaml:"duration_ms"`
}

// SoundConfig names the assets used for each reminder event and where to fetch them.
type SoundConfig struct {
	Alarm    string `yaml:"alarm"`
	Set      string `yaml:"set"`
	Complete string `yaml:"complete"`
	Dir      string `yaml:"dir"`
	BaseURL  string `yaml:"base_url"`
}

type AudioConfig struct {
	SampleRate int `yaml:"sample_rate"`
	Channels   int `yaml:"channels"`
}

type ClockConfig struct {
	Fine   time.Duration `yaml:"fine"`
	Coarse time.Duration `yaml:"coarse"`
}

// PrefetchConfig controls background video warming.
type PrefetchConfig struct {
	Concurrency int    `yaml:"concurrency"`
	Limit       int    `yaml:"limit"`
	BaseURL     string `yaml:"base_url"`
	CacheDir    string `yaml:"cache_dir"`
}

type BackgroundsConfig struct {
	Manifest string `yaml:"manifest"`
}

// ICalSource represents a named iCal calendar source
type ICalSource struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

// Validate checks if the iCal source has required fields
func (s *ICalSource) Validate() bool {
	return s.Name != "" && s.URL != ""
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		Timezone:        "Asia/Manila",
		HoldTimeSeconds: 2,
		Log:             LogConfig{Level: "info"},
		Toast:           ToastConfig{DurationMS: 4000},
		Sounds:          SoundConfig{Alarm: "alarm", Set: "set", Complete: "complete"},
		Audio:           AudioConfig{SampleRate: 44100, Channels: 2},
		Clock:           ClockConfig{Fine: time.Second, Coarse: time.Minute},
		Prefetch:        PrefetchConfig{Concurrency: 2, Limit: 4},
		Backgrounds:     BackgroundsConfig{Manifest: "backgrounds.json"},
	}
}

// ToastDuration returns the default toast lifetime.
func (c *Config) ToastDuration() time.Duration {
	return time.Duration(c.Toast.DurationMS) * time.Millisecond
}

// NeedsCalendar returns true if no calendar source is configured yet.
func (c *Config) NeedsCalendar() bool {
	return len(c.ICalSources) == 0
}

// Validate checks value ranges. Timezone resolution is left to the caller.
func (c *Config) Validate() error {
	var errs []error
	if c.Timezone == "" {
		errs = append(errs, errors.New("timezone is empty"))
	}
	if c.HoldTimeSeconds < 0 {
		errs = append(errs, fmt.Errorf("hold_time_seconds %d is negative", c.HoldTimeSeconds))
	}
	if c.Toast.DurationMS < 0 {
		errs = append(errs, fmt.Errorf("toast.duration_ms %d is negative", c.Toast.DurationMS))
	}
	if c.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio.sample_rate %d must be positive", c.Audio.SampleRate))
	}
	if c.Audio.Channels != 1 && c.Audio.Channels != 2 {
		errs = append(errs, fmt.Errorf("audio.channels %d must be 1 or 2", c.Audio.Channels))
	}
	if c.Clock.Fine <= 0 || c.Clock.Coarse <= 0 {
		errs = append(errs, errors.New("clock intervals must be positive"))
	}
	if c.Prefetch.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("prefetch.concurrency %d must be at least 1", c.Prefetch.Concurrency))
	}
	if c.Prefetch.Limit < 0 {
		errs = append(errs, fmt.Errorf("prefetch.limit %d is negative", c.Prefetch.Limit))
	}
	for i := range c.ICalSources {
		if !c.ICalSources[i].Validate() {
			errs = append(errs, fmt.Errorf("ical_sources[%d] needs a name and url", i))
		}
	}
	return errors.Join(errs...)
}
