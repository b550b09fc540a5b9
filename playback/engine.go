package playback

import (
	"log"
	"sync"
	"time"
)

// DefaultInterval is the time between two rendered frames
const DefaultInterval = 100 * time.Millisecond

// Engine replays a processed dataset frame by frame.
//
// Idle --Start--> Running --Stop / end of data--> Stopped --Start--> Running.
// Every Start rewinds to the first sample; there is no resume.
type Engine struct {
	mu        sync.Mutex
	scheduler Scheduler
	interval  time.Duration
	sink      Sink
	onState   func(State)
	onFinish  func(frames int)

	source Source
	state  State
	cursor int // next sample to render
	last   int // last rendered sample, -1 when nothing was rendered
	gen    int
}

// NewEngine creates an idle engine. A zero interval means DefaultInterval.
func NewEngine(scheduler Scheduler, interval time.Duration, sink Sink) *Engine {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Engine{
		scheduler: scheduler,
		interval:  interval,
		sink:      sink,
		last:      -1,
	}
}

// OnStateChange registers a callback for state transitions. It runs with the
// engine locked and must not call back into the engine.
func (e *Engine) OnStateChange(fn func(State)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onState = fn
}

// OnFinish registers a callback for a playback that reached the last sample on
// its own. A manual Stop does not call it. Same locking rules as OnStateChange.
func (e *Engine) OnFinish(fn func(frames int)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onFinish = fn
}

// Load installs a new dataset, halting any playback and rewinding the cursor.
// The first frame is rendered as a preview. A nil or empty source clears the engine.
func (e *Engine) Load(src Source) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.haltLocked()
	if src != nil && src.Len() == 0 {
		src = nil
	}
	e.source = src
	e.cursor = 0
	e.last = -1
	e.setStateLocked(Idle)

	if src != nil {
		e.renderLocked(0)
	}
}

// Start begins playback from the first sample. Without a dataset it does nothing
// and returns false. Starting while running restarts from the beginning.
func (e *Engine) Start() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.source == nil {
		return false
	}

	e.haltLocked()
	e.cursor = 0
	e.setStateLocked(Running)

	gen := e.gen
	if e.scheduler != nil {
		e.scheduler.Start(e.interval, func() { e.tick(gen) })
	}
	log.Printf("Playback started (%d samples, %v per frame)", e.source.Len(), e.interval)
	return true
}

// Stop halts a running playback, keeping the last rendered frame. It reports
// whether a playback was running, false when it had already finished.
func (e *Engine) Stop() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Running {
		return false
	}
	e.haltLocked()
	e.setStateLocked(Stopped)
	log.Printf("Playback stopped at sample %d", e.last)
	return true
}

// Tick advances a running playback by one frame. Schedulers other than the
// configured one may call it directly.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickLocked()
}

func (e *Engine) tick(gen int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Tick from a schedule that has since been stopped or replaced
	if gen != e.gen {
		return
	}
	e.tickLocked()
}

func (e *Engine) tickLocked() {
	if e.state != Running || e.source == nil {
		return
	}

	n := e.source.Len()
	if e.cursor > n-1 {
		e.cursor = n - 1
	}

	e.renderLocked(e.cursor)

	if e.cursor >= n-1 {
		e.haltLocked()
		e.setStateLocked(Stopped)
		log.Printf("Playback finished after %d frames", n)
		if e.onFinish != nil {
			e.onFinish(n)
		}
		return
	}
	e.cursor++
}

// State returns the current state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Cursor returns the index of the last rendered sample, -1 before the first frame
func (e *Engine) Cursor() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// Current returns the last rendered frame
func (e *Engine) Current() (Frame, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.source == nil || e.last < 0 {
		return Frame{}, false
	}
	return e.source.Frame(e.last), true
}

func (e *Engine) renderLocked(idx int) {
	e.last = idx
	if e.sink != nil {
		e.sink.Render(e.source.Frame(idx))
	}
}

// haltLocked disables the timer and invalidates ticks already in flight
func (e *Engine) haltLocked() {
	e.gen++
	if e.scheduler != nil {
		e.scheduler.Stop()
	}
}

func (e *Engine) setStateLocked(s State) {
	if e.state == s {
		return
	}
	e.state = s
	if e.onState != nil {
		e.onState(s)
	}
}
