package internal

import (
	"fmt"
	"strconv"

	"github.com/etesami/iou-tracking-system/pkg/tracker"
)

// Config holds the tracker service configuration.
type Config struct {
	Tracker tracker.Config

	// detection post-processing, 0 disables
	MinScore float64
	MinArea  float64

	// confirmed-track persistence, empty disables
	DBPath string

	SaveImage          bool
	SaveImagePath      string
	SaveImageFrequency int
}

// LoadConfig reads the service configuration through getenv (os.Getenv in
// main). Unset variables keep their defaults; malformed or out-of-range
// values are rejected.
func LoadConfig(getenv func(string) string) (*Config, error) {
	c := &Config{
		Tracker:            tracker.DefaultConfig(),
		DBPath:             getenv("TRACK_DB_PATH"),
		SaveImage:          getenv("SAVE_IMAGE") == "true",
		SaveImagePath:      getenv("SAVE_IMAGE_PATH"),
		SaveImageFrequency: 1,
	}

	var err error
	if c.Tracker.IoUThreshold, err = floatEnv(getenv, "IOU_THRESHOLD", c.Tracker.IoUThreshold); err != nil {
		return nil, err
	}
	if c.Tracker.MaxAge, err = intEnv(getenv, "MAX_AGE", c.Tracker.MaxAge); err != nil {
		return nil, err
	}
	if c.Tracker.MinHits, err = intEnv(getenv, "MIN_HITS", c.Tracker.MinHits); err != nil {
		return nil, err
	}
	if err := c.Tracker.Validate(); err != nil {
		return nil, err
	}

	if c.MinScore, err = floatEnv(getenv, "MIN_SCORE", 0); err != nil {
		return nil, err
	}
	if c.MinArea, err = floatEnv(getenv, "MIN_AREA", 0); err != nil {
		return nil, err
	}
	if c.SaveImageFrequency, err = intEnv(getenv, "SAVE_IMAGE_FREQUENCY", c.SaveImageFrequency); err != nil {
		return nil, err
	}
	if c.SaveImageFrequency < 1 {
		return nil, fmt.Errorf("SAVE_IMAGE_FREQUENCY must be at least 1, got %d", c.SaveImageFrequency)
	}
	if c.SaveImage && c.SaveImagePath == "" {
		return nil, fmt.Errorf("SAVE_IMAGE is set but SAVE_IMAGE_PATH is empty")
	}
	return c, nil
}

func floatEnv(getenv func(string) string, key string, def float64) (float64, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return f, nil
}

func intEnv(getenv func(string) string, key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return i, nil
}
