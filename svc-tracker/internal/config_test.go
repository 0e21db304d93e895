package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etesami/iou-tracking-system/pkg/tracker"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadConfig_Defaults(t *testing.T) {
	c, err := LoadConfig(envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, tracker.DefaultConfig(), c.Tracker)
	assert.Zero(t, c.MinScore)
	assert.Zero(t, c.MinArea)
	assert.Empty(t, c.DBPath)
	assert.False(t, c.SaveImage)
	assert.Equal(t, 1, c.SaveImageFrequency)
}

func TestLoadConfig_Overrides(t *testing.T) {
	c, err := LoadConfig(envMap(map[string]string{
		"IOU_THRESHOLD":        "0.5",
		"MAX_AGE":              "10",
		"MIN_HITS":             "3",
		"MIN_SCORE":            "0.25",
		"MIN_AREA":             "16",
		"TRACK_DB_PATH":        "/tmp/tracks.db",
		"SAVE_IMAGE":           "true",
		"SAVE_IMAGE_PATH":      "/tmp/frames",
		"SAVE_IMAGE_FREQUENCY": "5",
	}))
	require.NoError(t, err)
	assert.Equal(t, tracker.Config{IoUThreshold: 0.5, MaxAge: 10, MinHits: 3}, c.Tracker)
	assert.Equal(t, 0.25, c.MinScore)
	assert.Equal(t, 16.0, c.MinArea)
	assert.Equal(t, "/tmp/tracks.db", c.DBPath)
	assert.True(t, c.SaveImage)
	assert.Equal(t, 5, c.SaveImageFrequency)
}

func TestLoadConfig_Invalid(t *testing.T) {
	for name, env := range map[string]map[string]string{
		"bad float":          {"IOU_THRESHOLD": "high"},
		"threshold range":    {"IOU_THRESHOLD": "1.2"},
		"negative max age":   {"MAX_AGE": "-1"},
		"zero min hits":      {"MIN_HITS": "0"},
		"bad frequency":      {"SAVE_IMAGE_FREQUENCY": "0"},
		"save without path":  {"SAVE_IMAGE": "true"},
		"non-integer maxage": {"MAX_AGE": "1.5"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(envMap(env))
			assert.Error(t, err)
		})
	}
}
