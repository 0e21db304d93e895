package internal

import (
	"fmt"
	"strconv"
)

// Config holds the detector service configuration.
type Config struct {
	SourceId  string
	FrameRate float64

	// optional frame source, empty sends detections only
	VideoSource string
	ImageWidth  int
	ImageHeight int
}

// LoadConfig reads the detector configuration through getenv. Malformed
// values are rejected instead of falling back to a default.
func LoadConfig(getenv func(string) string) (*Config, error) {
	c := &Config{
		SourceId:    getenv("SOURCE_ID"),
		FrameRate:   10,
		VideoSource: getenv("VIDEO_SOURCE"),
	}
	if c.SourceId == "" {
		c.SourceId = "mock-0"
	}

	if v := getenv("FRAME_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("parse FRAME_RATE: %w", err)
		}
		if f <= 0 {
			return nil, fmt.Errorf("FRAME_RATE must be positive, got %v", f)
		}
		c.FrameRate = f
	}

	var err error
	if c.ImageWidth, err = sizeEnv(getenv, "IMAGE_WIDTH"); err != nil {
		return nil, err
	}
	if c.ImageHeight, err = sizeEnv(getenv, "IMAGE_HEIGHT"); err != nil {
		return nil, err
	}
	return c, nil
}

// sizeEnv reads a frame dimension; unset means keep the source size.
func sizeEnv(getenv func(string) string, key string) (int, error) {
	v := getenv(key)
	if v == "" {
		return 0, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if i < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %d", key, i)
	}
	return i, nil
}
