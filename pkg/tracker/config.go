package tracker

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is returned by New when a configuration value is out of range.
var ErrInvalidConfig = errors.New("invalid tracker config")

// Config holds configuration parameters for the tracker.
type Config struct {
	IoUThreshold float64 // Minimum IoU for a track/detection pair to match
	MaxAge       int     // Frames a track survives unmatched before removal
	MinHits      int     // Hits needed before a track is reported as confirmed
}

// DefaultConfig returns default tracker configuration.
func DefaultConfig() Config {
	return Config{
		IoUThreshold: 0.3,
		MaxAge:       30,
		MinHits:      1,
	}
}

// Validate reports the first out-of-range value, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	if math.IsNaN(c.IoUThreshold) || c.IoUThreshold < 0 || c.IoUThreshold > 1 {
		return fmt.Errorf("%w: iou threshold %v not in [0,1]", ErrInvalidConfig, c.IoUThreshold)
	}
	if c.MaxAge < 0 {
		return fmt.Errorf("%w: max age %d is negative", ErrInvalidConfig, c.MaxAge)
	}
	if c.MinHits < 1 {
		return fmt.Errorf("%w: min hits %d must be at least 1", ErrInvalidConfig, c.MinHits)
	}
	return nil
}
