package tana

import (
	"log/slog"
	"time"

	"github.com/shelfworks/tana/storage"
)

// Option configures a Catalog.
type Option func(*catalogOptions)

type catalogOptions struct {
	logger *slog.Logger
	clock  func() time.Time
	probe  func() bool
	tier   storage.Tier
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *catalogOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock sets the time source used to stamp added dates.
// Default is time.Now.
func WithClock(clock func() time.Time) Option {
	return func(o *catalogOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithProbe overrides the capability probe that decides whether the
// native tier is viable. Default probes the data directory.
func WithProbe(probe func() bool) Option {
	return func(o *catalogOptions) {
		o.probe = probe
	}
}

// WithTier bypasses tier selection and installs the given tier as the
// active tier.
func WithTier(tier storage.Tier) Option {
	return func(o *catalogOptions) {
		o.tier = tier
	}
}
