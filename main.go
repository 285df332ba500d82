package main

import (
	"context"
	"flag"
	"net/http"
	"sync"
	"time"
	_ "time/tzdata"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/borgmon/reminder-clock/pkg/alarm"
	"github.com/borgmon/reminder-clock/pkg/audio"
	"github.com/borgmon/reminder-clock/pkg/backgrounds"
	"github.com/borgmon/reminder-clock/pkg/calendar"
	"github.com/borgmon/reminder-clock/pkg/clock"
	"github.com/borgmon/reminder-clock/pkg/config"
	"github.com/borgmon/reminder-clock/pkg/countdown"
	"github.com/borgmon/reminder-clock/pkg/logging"
	"github.com/borgmon/reminder-clock/pkg/metrics"
	"github.com/borgmon/reminder-clock/pkg/models"
	"github.com/borgmon/reminder-clock/pkg/platform"
	"github.com/borgmon/reminder-clock/pkg/prefetch"
	"github.com/borgmon/reminder-clock/pkg/store"
	"github.com/borgmon/reminder-clock/pkg/toast"
	"github.com/rs/zerolog"
)

const appID = "com.borgmon.reminder-clock"

type ReminderClock struct {
	app    fyne.App
	config models.Config
	logger zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	settings   *store.SettingsStore
	reminders  *store.ReminderStore
	background *store.BackgroundStore

	interactions *audio.Interactions
	gate         *audio.Gate
	sounds       *audio.Library
	toasts       *toast.Store

	fine      *clock.Source
	coarse    *clock.Source
	countdown *countdown.Tracker
	watcher   *alarm.Watcher

	catalog    *backgrounds.Catalog
	prefetcher *prefetch.Prefetcher
	calendar   *calendar.Fetcher

	mainWindow     *MainWindow
	settingsWindow *SettingsWindow

	detach       []func()
	shutdownOnce sync.Once
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	logging.Configure(logging.Config{Level: cfg.Log.Level})
	logger := logging.WithComponent("main")
	if err != nil {
		logger.Fatal().Err(err).Str("path", *configPath).Msg("failed to load configuration")
	}

	rc := &ReminderClock{
		app:    app.NewWithID(appID),
		logger: logger,
	}

	if err := rc.initialize(cfg); err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize")
	}

	rc.run()
}

func (rc *ReminderClock) initialize(base models.Config) error {
	rc.ctx, rc.cancel = context.WithCancel(context.Background())
	prefs := rc.app.Preferences()

	// Saved settings win over the file, but never with invalid values
	rc.settings = store.NewSettingsStore(prefs)
	cfg := rc.settings.Load(base)
	if err := config.Validate(&cfg); err != nil {
		rc.logger.Warn().Err(err).Msg("saved settings rejected, using file configuration")
		cfg = base
	}
	rc.config = cfg

	// Sync autostart state with config on startup
	if err := setupAutostart(cfg.AutoStart); err != nil {
		rc.logger.Warn().Err(err).Msg("failed to setup autostart")
	}

	go func() {
		if err := metrics.Serve(rc.ctx, cfg.Metrics.Addr); err != nil {
			rc.logger.Error().Err(err).Msg("metrics listener stopped")
		}
	}()

	sampler, err := clock.NewSampler(cfg.Timezone)
	if err != nil {
		return err
	}
	rc.fine = clock.NewSource(clock.Real{}, sampler, cfg.Clock.Fine)
	rc.coarse = clock.NewSource(clock.Real{}, sampler, cfg.Clock.Coarse)
	rc.countdown = countdown.NewTracker(rc.fine)

	rc.reminders = store.NewReminderStore(prefs, clock.Real{})
	rc.background = store.NewBackgroundStore(prefs)

	format := audio.Format{SampleRate: cfg.Audio.SampleRate, Channels: cfg.Audio.Channels}
	rc.interactions = audio.NewInteractions()
	rc.gate = audio.NewGate(audio.OpenOto, format)
	rc.detach = append(rc.detach, rc.gate.InstallAutoUnlock(rc.ctx, rc.interactions))
	rc.sounds = audio.NewLibrary(rc.gate, soundFetcher(cfg.Sounds, format))
	rc.toasts = toast.NewStore(rc.sounds, clock.Real{})

	rc.watcher = alarm.NewWatcher(rc.reminders, rc.toasts, alarm.Options{
		AlarmSound:    cfg.Sounds.Alarm,
		CompleteSound: cfg.Sounds.Complete,
		Interval:      cfg.Clock.Fine,
		OnFire:        rc.onAlarm,
	})
	rc.detach = append(rc.detach, rc.watcher.Attach(rc.fine))

	rc.prefetcher, err = prefetch.New(prefetch.Options{
		Client:      &http.Client{Timeout: 2 * time.Minute},
		BaseURL:     cfg.Prefetch.BaseURL,
		CacheDir:    cfg.Prefetch.CacheDir,
		Concurrency: cfg.Prefetch.Concurrency,
	})
	if err != nil {
		return err
	}

	rc.catalog = backgrounds.NewCatalog(cfg.Backgrounds.Manifest)
	if err := rc.catalog.Load(); err != nil {
		rc.logger.Warn().Err(err).Msg("failed to load background manifest")
	}

	rc.calendar = &calendar.Fetcher{Client: &http.Client{Timeout: 30 * time.Second}}

	rc.mainWindow = NewMainWindow(rc)
	rc.detach = append(rc.detach, rc.catalog.Subscribe(func([]backgrounds.Item) {
		go rc.prefetchBackgrounds()
		fyne.Do(rc.mainWindow.refreshBackground)
	}))
	if err := rc.catalog.Watch(rc.ctx); err != nil {
		rc.logger.Warn().Err(err).Msg("background manifest will not reload")
	}
	rc.setupSystemTray()
	rc.detach = append(rc.detach, rc.coarse.Subscribe(func(clock.Sample) {
		fyne.Do(rc.updateSystemTrayMenu)
	}))

	rc.fine.Start()
	rc.coarse.Start()
	go rc.prefetchBackgrounds()

	rc.logger.Info().
		Str("timezone", cfg.Timezone).
		Int("reminders", len(rc.reminders.List())).
		Int("backgrounds", len(rc.catalog.Items())).
		Msg("reminder clock ready")
	return nil
}

func (rc *ReminderClock) run() {
	rc.app.Lifecycle().SetOnStarted(func() {
		platform.SetActivationPolicy()
	})
	rc.mainWindow.Show()
	rc.app.Run()
	rc.shutdown()
}

// soundFetcher looks in the sounds directory, then the sounds URL, then the
// built-in tones.
func soundFetcher(cfg models.SoundConfig, format audio.Format) audio.Fetcher {
	var chain audio.Chain
	if cfg.Dir != "" {
		chain = append(chain, audio.DirFetcher{Dir: cfg.Dir})
	}
	if cfg.BaseURL != "" {
		chain = append(chain, audio.HTTPFetcher{BaseURL: cfg.BaseURL})
	}
	return append(chain, audio.ToneFetcher{Format: format})
}

func (rc *ReminderClock) prefetchBackgrounds() {
	if rc.config.Prefetch.BaseURL == "" && rc.config.Prefetch.CacheDir == "" {
		return
	}
	rc.prefetcher.Many(rc.ctx, rc.catalog.Sources(), rc.config.Prefetch.Limit)
}

func (rc *ReminderClock) onAlarm(r models.Reminder) {
	fyne.Do(func() {
		rc.mainWindow.Show()
		if !platform.IsAppActive() {
			platform.ActivateApp()
		}
		rc.updateSystemTrayMenu()
		rc.logger.Debug().Str("reminder", r.ID).Msg("alarm window raised")
	})
}

// gesture forwards a user gesture to the audio gate off the UI thread.
func (rc *ReminderClock) gesture(kind audio.InteractionKind) {
	go func() {
		locked := !rc.gate.IsUnlocked()
		rc.interactions.Emit(kind)
		if locked && rc.gate.IsUnlocked() {
			// Alarms raised while locked start their loops now
			fyne.Do(rc.mainWindow.refreshToasts)
		}
	}()
}

func (rc *ReminderClock) applySettings(cfg models.Config) {
	rc.config.AutoStart = cfg.AutoStart
	rc.config.HoldTimeSeconds = cfg.HoldTimeSeconds
	rc.config.Sounds.Alarm = cfg.Sounds.Alarm
	rc.config.ICalSources = cfg.ICalSources
	rc.settings.Save(rc.config)
	rc.watcher.SetAlarmSound(cfg.Sounds.Alarm)
	rc.mainWindow.refreshToasts()
	rc.logger.Info().
		Bool("auto_start", cfg.AutoStart).
		Str("alarm_sound", cfg.Sounds.Alarm).
		Int("ical_sources", len(cfg.ICalSources)).
		Msg("settings saved")
}

func (rc *ReminderClock) shutdown() {
	rc.shutdownOnce.Do(func() {
		rc.cancel()
		for _, detach := range rc.detach {
			detach()
		}
		rc.fine.Stop()
		rc.coarse.Stop()
		rc.catalog.Close()
		rc.toasts.Close()
		rc.sounds.Close()
		rc.logger.Info().Msg("reminder clock stopped")
	})
}

func (rc *ReminderClock) quit() {
	rc.shutdown()
	rc.app.Quit()
}
