package clock

import (
	"sync"
	"time"

	"github.com/borgmon/reminder-clock/pkg/logging"
	"github.com/rs/zerolog"
)

// Common cadences: fine for countdowns, coarse for the date line.
const (
	FineInterval   = time.Second
	CoarseInterval = time.Minute
)

// Source re-derives a Sample on every tick and republishes it to subscribers.
// Each Source owns one ticker; callers that need two cadences create two Sources.
type Source struct {
	clk      Clock
	sampler  *Sampler
	interval time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex
	latest  Sample
	subs    map[int]func(Sample)
	nextSub int
	ticker  Ticker
	quit    chan struct{}
	done    chan struct{}
}

// NewSource creates a stopped source. Call Start to begin ticking.
func NewSource(clk Clock, sampler *Sampler, interval time.Duration) *Source {
	if clk == nil {
		clk = Real{}
	}
	return &Source{
		clk:      clk,
		sampler:  sampler,
		interval: interval,
		logger:   logging.WithComponent("clock").With().Dur("interval", interval).Logger(),
		subs:     make(map[int]func(Sample)),
	}
}

// Sampler returns the sampler used for every tick.
func (s *Source) Sampler() *Sampler { return s.sampler }

// Latest returns the most recent sample, or the zero Sample before Start.
func (s *Source) Latest() Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Subscribe registers fn for every published sample. fn runs on the ticking
// goroutine and must not block. The returned func removes the subscription.
func (s *Source) Subscribe(fn func(Sample)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Start publishes a sample immediately and then once per interval.
// Calling Start on a running source is a no-op.
func (s *Source) Start() {
	s.mu.Lock()
	if s.ticker != nil {
		s.mu.Unlock()
		return
	}
	s.ticker = s.clk.NewTicker(s.interval)
	s.quit = make(chan struct{})
	s.done = make(chan struct{})
	ticker, quit, done := s.ticker, s.quit, s.done
	s.mu.Unlock()

	s.publish(s.clk.Now())

	go func() {
		defer close(done)
		for {
			select {
			case <-quit:
				return
			case t := <-ticker.C():
				s.publish(t)
			}
		}
	}()
	s.logger.Debug().Msg("clock source started")
}

// Stop cancels future ticks and waits for the ticking goroutine to exit.
// Samples already taken stay valid.
func (s *Source) Stop() {
	s.mu.Lock()
	if s.ticker == nil {
		s.mu.Unlock()
		return
	}
	s.ticker.Stop()
	close(s.quit)
	done := s.done
	s.ticker = nil
	s.mu.Unlock()

	<-done
	s.logger.Debug().Msg("clock source stopped")
}

// Refresh samples now and publishes outside the regular cadence.
func (s *Source) Refresh() Sample {
	s.publish(s.clk.Now())
	return s.Latest()
}

func (s *Source) publish(t time.Time) {
	sample := s.sampler.Sample(t)

	s.mu.Lock()
	if !s.latest.At.IsZero() && sample.At.Before(s.latest.At) {
		s.mu.Unlock()
		s.logger.Debug().Time("at", t).Msg("dropping sample older than latest")
		return
	}
	s.latest = sample
	subs := make([]func(Sample), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(sample)
	}
}
