package cache

// config.go defines the options struct and the functional options that
// configure a Cache, following the teacher's pkg/config.go pattern exactly:
// an Options struct with unexported fields and sensible defaults, With* constructors
// that never allocate beyond capturing the argument, and a single
// applyOptions/validation step. Unlike the teacher, this cache has no type
// parameters: keys and values are opaque byte strings (spec §1), so Option
// is a plain function, not a generic one.
//
// © 2025 arena-cache authors. MIT License.

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Voskan/ttlarena/internal/cyclectl"
)

// ResizeCallback is the observability/policy hook of spec §4.5(d), exported
// under this package's own name so callers never need to import
// internal/cyclectl.
type ResizeCallback = cyclectl.ResizeCallback

// TTLStats is the per-cycle TTL statistics snapshot passed to
// ResizeCallback.
type TTLStats = cyclectl.TTLStats

// Options bundles every knob that influences Cache behaviour. All fields are
// immutable once a Cache has been initialized via New/Init; SetOptions (see
// default.go) is the only supported way to change them afterward, and it
// replaces the struct wholesale rather than merging (spec §9 Open Question).
type Options struct {
	allowResize     bool
	targetCycleTime time.Duration
	resizeCallback  ResizeCallback
	clock           Clock
	logger          *zap.Logger
	registry        *prometheus.Registry
}

// Option is a functional option passed to New or Init.
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		allowResize:     true,
		targetCycleTime: 24 * time.Hour,
		clock:           systemClock{},
		logger:          zap.NewNop(),
	}
}

// WithAllowResize enables or disables the cycle controller's ability to
// reinitialize the cache at a new size (spec §4.5, §6). Default: true.
func WithAllowResize(b bool) Option {
	return func(o *Options) { o.allowResize = b }
}

// WithTargetCycleTime sets the desired wall-clock duration between
// rotations that the cycle controller aims for (spec §6). Default: 24h.
func WithTargetCycleTime(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.targetCycleTime = d
		}
	}
}

// WithResizeCallback installs the resize observability/policy hook
// (spec §4.5(d), §6). Passing nil clears it.
func WithResizeCallback(cb ResizeCallback) Option {
	return func(o *Options) { o.resizeCallback = cb }
}

// WithClock overrides the time source, primarily for deterministic tests of
// cycle timing (Design Notes).
func WithClock(c Clock) Option {
	return func(o *Options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithLogger plugs an external zap.Logger. The cache never logs on the hot
// path (Get/Set); only resize events and fatal-corruption diagnostics are
// emitted.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics enables Prometheus metrics collection for the cache instance.
// Passing nil disables metrics (default).
func WithMetrics(reg *prometheus.Registry) Option {
	return func(o *Options) { o.registry = reg }
}

func applyOptions(opts []Option) (Options, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.targetCycleTime <= 0 {
		return o, errInvalidTargetCycleTime
	}
	return o, nil
}

var errInvalidTargetCycleTime = errors.New("cache: target cycle time must be > 0")
