// Package replay drives a deterministic, speed-adjustable cursor over a
// fixed historical candle series.
package replay

import (
	"sync"
	"time"
)

// State is the lifecycle state of a replay clock.
type State string

const (
	// Stopped means the clock has never played or has been reset.
	Stopped State = "stopped"
	// Playing means the scheduler is advancing the cursor.
	Playing State = "playing"
	// Paused means playback is suspended at the current index.
	Paused State = "paused"
)

// Options holds the scheduler tuning knobs. The zero value is unusable;
// use DefaultOptions for production settings.
type Options struct {
	// BaseInterval is the scheduler period at speed 1.
	BaseInterval time.Duration
	// MinInterval is the floor of the scheduler period at high speed.
	MinInterval time.Duration
	// MaxUpdatesPerSecond rate-limits advances regardless of speed.
	MaxUpdatesPerSecond int
	// BatchSize is the step size used at or above SpeedThreshold, so
	// wall-clock replay time stays bounded at high multipliers without
	// breaking candle order.
	BatchSize int
	// SpeedThreshold is the multiplier at which batch stepping kicks in.
	SpeedThreshold float64
}

// DefaultOptions mirrors the simulator's production tuning: ~16ms
// resolution, at most 60 updates a second, batches of 5 from 5x up.
func DefaultOptions() Options {
	return Options{
		BaseInterval:        100 * time.Millisecond,
		MinInterval:         16 * time.Millisecond,
		MaxUpdatesPerSecond: 60,
		BatchSize:           5,
		SpeedThreshold:      5,
	}
}

// Clock is a replay cursor state machine over a series of a fixed length.
// The cursor index is monotonically non-decreasing while playing, clamped
// to [0, length-1], and only returns to 0 on Reset. Reaching the last
// index auto-transitions to Paused; Reset is required to replay.
type Clock struct {
	mu      sync.Mutex
	opts    Options
	length  int
	index   int
	speed   float64
	state   State
	advance func(index int)
	onReset func()

	stopCh     chan struct{}
	lastUpdate time.Time
}

// NewClock creates a clock over a series of the given length. The advance
// callback fires on the scheduler goroutine for every new index; onReset
// fires on Reset so the owner can clear portfolio and trade state.
func NewClock(length int, opts Options, advance func(index int), onReset func()) *Clock {
	return &Clock{
		opts:    opts,
		length:  length,
		speed:   1,
		state:   Stopped,
		advance: advance,
		onReset: onReset,
	}
}

// State returns the current lifecycle state.
func (c *Clock) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Index returns the current cursor index.
func (c *Clock) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Speed returns the current speed multiplier.
func (c *Clock) Speed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// SetSpeed changes the speed multiplier. Values <= 0 are ignored. Takes
// effect on the next scheduled step; the scheduler is restarted if playing
// so the new interval applies immediately.
func (c *Clock) SetSpeed(speed float64) {
	if speed <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speed = speed
	if c.state == Playing {
		c.stopSchedulerLocked()
		c.startSchedulerLocked()
	}
}

// Play transitions stopped/paused -> playing and starts the scheduler.
// Playing is a no-op while already playing or when the series is empty.
func (c *Clock) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Playing || c.length == 0 {
		return
	}
	c.state = Playing
	c.startSchedulerLocked()
}

// Pause transitions playing -> paused and cancels the pending scheduled
// step; no advance fires after Pause returns.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Playing {
		return
	}
	c.state = Paused
	c.stopSchedulerLocked()
}

// Reset transitions any state -> stopped with index 0, cancels any pending
// step and invokes the onReset hook for full downstream state clearing.
func (c *Clock) Reset() {
	c.mu.Lock()
	c.stopSchedulerLocked()
	c.state = Stopped
	c.index = 0
	onReset := c.onReset
	c.mu.Unlock()

	if onReset != nil {
		onReset()
	}
}

// startSchedulerLocked launches the scheduler goroutine. Callers must hold mu.
func (c *Clock) startSchedulerLocked() {
	stopCh := make(chan struct{})
	c.stopCh = stopCh

	interval := time.Duration(float64(c.opts.BaseInterval) / c.speed)
	if interval < c.opts.MinInterval {
		interval = c.opts.MinInterval
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				if !c.step(stopCh) {
					return
				}
			}
		}
	}()
}

// stopSchedulerLocked cancels the scheduler goroutine. Callers must hold mu.
func (c *Clock) stopSchedulerLocked() {
	if c.stopCh != nil {
		close(c.stopCh)
		c.stopCh = nil
	}
}

// step advances the cursor by one scheduler tick. Returns false when the
// scheduler should exit (end of series or cancelled).
func (c *Clock) step(stopCh chan struct{}) bool {
	c.mu.Lock()
	// a Pause/Reset raced with the ticker: this step is stale, drop it
	if c.state != Playing || c.stopCh != stopCh {
		c.mu.Unlock()
		return false
	}

	now := time.Now()
	minGap := time.Second / time.Duration(c.opts.MaxUpdatesPerSecond)
	if now.Sub(c.lastUpdate) < minGap {
		c.mu.Unlock()
		return true
	}
	c.lastUpdate = now

	step := 1
	if c.speed >= c.opts.SpeedThreshold {
		step = c.opts.BatchSize
	}

	next := c.index + step
	if next >= c.length-1 {
		next = c.length - 1
	}
	c.index = next
	done := next == c.length-1
	if done {
		c.state = Paused
		c.stopCh = nil
	}
	advance := c.advance
	c.mu.Unlock()

	if advance != nil {
		advance(next)
	}
	return !done
}
