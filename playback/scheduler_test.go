package playback

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTicker struct {
	c       chan time.Time
	stopped atomic.Bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }
func (t *fakeTicker) Stop()               { t.stopped.Store(true) }

type fakeClock struct {
	mu        sync.Mutex
	tickers   []*fakeTicker
	intervals []time.Duration
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{c: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	c.intervals = append(c.intervals, d)
	return t
}

func (c *fakeClock) ticker(i int) *fakeTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tickers[i]
}

func TestTickerScheduler_CallsOnEveryTick(t *testing.T) {
	clock := &fakeClock{}
	s := NewTickerScheduler(clock)

	calls := make(chan struct{}, 10)
	s.Start(250*time.Millisecond, func() { calls <- struct{}{} })
	defer s.Stop()

	ticker := clock.ticker(0)
	for i := 0; i < 3; i++ {
		ticker.c <- time.Now()
		select {
		case <-calls:
		case <-time.After(time.Second):
			t.Fatalf("tick %d was not delivered", i)
		}
	}
	assert.Equal(t, 250*time.Millisecond, clock.intervals[0])
}

func TestTickerScheduler_StopEndsSchedule(t *testing.T) {
	clock := &fakeClock{}
	s := NewTickerScheduler(clock)

	var calls atomic.Int32
	s.Start(time.Millisecond, func() { calls.Add(1) })
	s.Stop()

	ticker := clock.ticker(0)
	// The goroutine exits and stops its ticker; nobody reads the channel anymore
	require.Eventually(t, ticker.stopped.Load, time.Second, time.Millisecond)
	select {
	case ticker.c <- time.Now():
		t.Fatal("tick accepted after Stop")
	case <-time.After(20 * time.Millisecond):
	}
	assert.Equal(t, int32(0), calls.Load())

	// Stop is idempotent
	s.Stop()
}

func TestTickerScheduler_StopFromCallback(t *testing.T) {
	clock := &fakeClock{}
	s := NewTickerScheduler(clock)

	done := make(chan struct{})
	s.Start(time.Millisecond, func() {
		s.Stop()
		close(done)
	})

	clock.ticker(0).c <- time.Now()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback did not run")
	}
	require.Eventually(t, clock.ticker(0).stopped.Load, time.Second, time.Millisecond)
}

func TestTickerScheduler_DrivesEngine(t *testing.T) {
	clock := &fakeClock{}
	sink := &recordingSink{}
	var mu sync.Mutex
	locked := SinkFunc(func(f Frame) {
		mu.Lock()
		defer mu.Unlock()
		sink.Render(f)
	})

	e := NewEngine(NewTickerScheduler(clock), 0, locked)
	e.Load(seriesSource{alt: []float64{1, 2, 3}})
	require.True(t, e.Start())

	ticker := clock.ticker(0)
	for i := 0; i < 3; i++ {
		ticker.c <- time.Now()
	}

	require.Eventually(t, func() bool { return e.State() == Stopped }, time.Second, time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 0, 1, 2}, sink.indices())
}
