// Package metrics holds the prometheus collectors shared by the reminder packages
// and an optional listener that exposes them.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/borgmon/reminder-clock/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registry every collector below is registered with.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	ToastsCreated = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "reminder_toasts_created_total",
		Help: "Notifications created, by variant.",
	}, []string{"variant"})

	ToastsActive = factory.NewGauge(prometheus.GaugeOpts{
		Name: "reminder_toasts_active",
		Help: "Notifications currently held by the toast store.",
	})

	AudioUnlocked = factory.NewGauge(prometheus.GaugeOpts{
		Name: "reminder_audio_unlocked",
		Help: "1 once the audio gate has been unlocked for this session.",
	})

	AudioLoopsActive = factory.NewGauge(prometheus.GaugeOpts{
		Name: "reminder_audio_loops_active",
		Help: "Looping sounds currently registered.",
	})

	PlaybackFailures = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "reminder_audio_playback_failures_total",
		Help: "Swallowed playback failures, by reason.",
	}, []string{"reason"})

	SoundCacheEntries = factory.NewGauge(prometheus.GaugeOpts{
		Name: "reminder_sound_cache_entries",
		Help: "Decoded sound assets held in memory.",
	})

	Prefetches = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "reminder_prefetch_total",
		Help: "Background video prefetch attempts, by result.",
	}, []string{"result"})

	AlarmsFired = factory.NewCounter(prometheus.CounterOpts{
		Name: "reminder_alarms_fired_total",
		Help: "Reminder alarms raised by the countdown watcher.",
	})
)

// Serve exposes Registry on addr until ctx is cancelled. An empty addr disables it.
func Serve(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}
	logger := logging.WithComponent("metrics")

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", addr).Msg("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
