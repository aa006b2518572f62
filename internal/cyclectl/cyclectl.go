// Package cyclectl implements the adaptive resize controller of spec §4.5:
// it measures the wall-clock duration of each rotation cycle, tracks TTL
// statistics for the entries inserted during that cycle, and decides — with
// two-consecutive-cycle hysteresis — whether the arena should be
// reinitialized at a larger or smaller size to converge on a target cycle
// time.
//
// The shape of this package is grounded on the teacher's CLOCK-Pro
// controller (internal/clockpro): both are single-threaded state machines
// that inspect a rolling signal (reference bits there, cycle ratio here) and
// require the signal to repeat before acting, to filter transient noise.
// The algorithm itself is entirely different — CLOCK-Pro promotes and
// demotes individual entries; this controller only ever decides whether to
// reinitialize the whole arena — so it is not named after CLOCK-Pro.
//
// © 2025 arena-cache authors. MIT License.
package cyclectl

import (
	"time"

	"go.uber.org/zap"

	"github.com/Voskan/ttlarena/internal/arena"
)

// TTLStats accumulates the TTLs of entries inserted during the current
// cycle (spec §3's ttl_stats attribute).
type TTLStats struct {
	Count uint64
	Sum   uint64
	Min   uint32
	Max   uint32
}

// ResizeCallback is the optional observability/policy hook of spec §4.5(d).
// Its boolean return overrides the controller's provisional decision.
type ResizeCallback func(ratio float64, oldSize, newSize uint32, stats TTLStats, provisional bool) bool

// OnResize is called after a resize actually happens, purely for metrics —
// it carries no decision-making power, unlike ResizeCallback.
type OnResize func(oldSize, newSize uint32)

// Controller holds the cycle timing state described in spec §3: cycleStart,
// lastRatio and ttlStats, plus the tunables from spec §4.5/§6's Options.
type Controller struct {
	allowResize     bool
	targetCycleTime float64 // seconds
	resizeCallback  ResizeCallback
	onResize        OnResize
	logger          *zap.Logger

	cycleStart int64
	lastRatio  float64
	stats      TTLStats
}

// New constructs a Controller. logger defaults to a no-op if nil.
func New(targetCycleTime time.Duration, allowResize bool, cb ResizeCallback, onResize OnResize, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		allowResize:     allowResize,
		targetCycleTime: targetCycleTime.Seconds(),
		resizeCallback:  cb,
		onResize:        onResize,
		logger:          logger,
	}
}

// Start resets cycle_start to now. Called once at cache Init/Reinit time and
// after every Decide call (whether or not it resized).
func (c *Controller) Start(now int64) {
	c.cycleStart = now
	c.stats = TTLStats{}
}

// Reconfigure replaces the tunables wholesale, per spec §9's Open Question
// on the default facade's SetOptions semantics — it does not touch
// cycleStart, lastRatio or stats, which belong to the in-flight cycle.
func (c *Controller) Reconfigure(targetCycleTime time.Duration, allowResize bool, cb ResizeCallback, onResize OnResize, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c.targetCycleTime = targetCycleTime.Seconds()
	c.allowResize = allowResize
	c.resizeCallback = cb
	c.onResize = onResize
	c.logger = logger
}

// RecordTTL folds ttl into the current cycle's statistics.
func (c *Controller) RecordTTL(ttl uint32) {
	if c.stats.Count == 0 || ttl < c.stats.Min {
		c.stats.Min = ttl
	}
	if ttl > c.stats.Max {
		c.stats.Max = ttl
	}
	c.stats.Count++
	c.stats.Sum += uint64(ttl)
}

// Stats returns a snapshot of the in-flight cycle's TTL statistics.
func (c *Controller) Stats() TTLStats { return c.stats }

// Decide implements spec §4.5 steps 1-3. It always advances cycleStart and
// clears stats for the next cycle, regardless of the outcome.
func (c *Controller) Decide(now int64, current *arena.Arena) (resized bool, fresh *arena.Arena) {
	elapsed := float64(now - c.cycleStart)

	if c.allowResize && elapsed > 0 {
		ratio := c.targetCycleTime / elapsed
		newSize := clampSize(float64(current.Size) * ratio * 1.10)

		provisional := c.lastRatio != 0 &&
			((ratio > 1.0 && c.lastRatio > 1.0 && current.Size < arena.MaxCacheSize) ||
				(ratio < 0.5 && c.lastRatio < 0.5 && current.Size > arena.MinCacheSize))

		decision := provisional
		if c.resizeCallback != nil {
			decision = c.resizeCallback(ratio, current.Size, uint32(newSize), c.stats, provisional)
		}

		if decision {
			na, err := arena.Init(uint32(newSize))
			if err != nil {
				arena.OnFatal("cycle controller: reinit at size %d failed: %v", uint32(newSize), err)
				return false, nil
			}
			c.logger.Info("arena resized",
				zap.Uint32("old_size", current.Size),
				zap.Uint32("new_size", na.Size),
				zap.Float64("ratio", ratio),
			)
			if c.onResize != nil {
				c.onResize(current.Size, na.Size)
			}
			c.lastRatio = 0
			c.Start(now)
			return true, na
		}
		c.lastRatio = ratio
	}

	c.Start(now)
	return false, nil
}

func clampSize(x float64) float64 {
	if x < arena.MinCacheSize {
		return arena.MinCacheSize
	}
	if x > arena.MaxCacheSize {
		return arena.MaxCacheSize
	}
	return x
}
