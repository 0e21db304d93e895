// Package tracker assigns persistent identities to per-frame detections using
// IoU overlap alone.
//
// Each call to Advance consumes one frame of detections. Existing tracks are
// paired greedily with detections by descending IoU. Unmatched detections
// start new tracks and tracks left unmatched for more than MaxAge frames are
// dropped.
// There is no appearance or motion model.
//
// A Tracker is not safe for concurrent use; callers serialize Advance.
package tracker

import "slices"

// Detection is one detector output for a single frame. Payload carries
// detector metadata (score, label, ...) and is passed through unmodified.
type Detection[P any] struct {
	Box
	Payload P
}

// Track is the annotated state of a live track after a frame.
type Track[P any] struct {
	ID        uint64
	Detection Detection[P] // most recently matched detection
	Confirmed bool         // Hits >= MinHits
	Age       int          // frames since last match, 0 when matched this frame
	Hits      int          // frames matched, including the creation frame
}

// FrameStats summarizes the most recent Advance call.
type FrameStats struct {
	Frame     uint64
	Matched   int
	Created   int
	Removed   int
	Confirmed int
	Tentative int
}

type track[P any] struct {
	id          uint64
	det         Detection[P]
	hits        int
	lastMatched uint64
}

// Tracker manages track lifecycle across frames.
type Tracker[P any] struct {
	cfg    Config
	tracks []track[P]
	nextID uint64
	frame  uint64
	stats  FrameStats

	// scratch, reused across frames
	trackMatched []bool
	detMatched   []bool
	pairs        []pair
}

// New creates a tracker, rejecting invalid configuration.
func New[P any](cfg Config) (*Tracker[P], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Tracker[P]{
		cfg:    cfg,
		nextID: 1,
	}, nil
}

// Frame returns the number of frames processed so far.
func (t *Tracker[P]) Frame() uint64 {
	return t.frame
}

// Len returns the number of live tracks.
func (t *Tracker[P]) Len() int {
	return len(t.tracks)
}

// Stats returns counters for the most recent Advance.
func (t *Tracker[P]) Stats() FrameStats {
	return t.stats
}

// Reset drops every track. The frame counter and the identity counter keep
// increasing, so Frame still equals the number of Advance calls and no ID is
// ever handed out twice by the same Tracker.
func (t *Tracker[P]) Reset() {
	clear(t.tracks)
	t.tracks = t.tracks[:0]
	t.stats = FrameStats{Frame: t.frame}
}

// Advance processes one frame of detections and returns every surviving
// track. The detections slice is only read during the call.
func (t *Tracker[P]) Advance(dets []Detection[P]) []Track[P] {
	t.frame++
	stats := FrameStats{Frame: t.frame}

	t.trackMatched = resetMarks(t.trackMatched, len(t.tracks))
	t.detMatched = resetMarks(t.detMatched, len(dets))

	var matches []pair
	if len(t.tracks) > 0 && len(dets) > 0 {
		matches = t.assignGreedy(dets)
	}

	for _, m := range matches {
		tr := &t.tracks[m.track]
		tr.det = dets[m.det]
		tr.hits++
		tr.lastMatched = t.frame
	}
	stats.Matched = len(matches)

	for j := range dets {
		if t.detMatched[j] {
			continue
		}
		t.tracks = append(t.tracks, track[P]{
			id:          t.nextID,
			det:         dets[j],
			hits:        1,
			lastMatched: t.frame,
		})
		t.nextID++
		stats.Created++
	}

	before := len(t.tracks)
	t.removeStale()
	stats.Removed = before - len(t.tracks)

	out := make([]Track[P], 0, len(t.tracks))
	for i := range t.tracks {
		tr := &t.tracks[i]
		confirmed := tr.hits >= t.cfg.MinHits
		if confirmed {
			stats.Confirmed++
		} else {
			stats.Tentative++
		}
		out = append(out, Track[P]{
			ID:        tr.id,
			Detection: tr.det,
			Confirmed: confirmed,
			Age:       int(t.frame - tr.lastMatched),
			Hits:      tr.hits,
		})
	}
	t.stats = stats
	return out
}

// removeStale compacts the track slice in place, keeping tracks whose age
// does not exceed MaxAge.
func (t *Tracker[P]) removeStale() {
	maxAge := uint64(t.cfg.MaxAge)
	kept := slices.DeleteFunc(t.tracks, func(tr track[P]) bool {
		return t.frame-tr.lastMatched > maxAge
	})
	t.tracks = kept
}

func resetMarks(marks []bool, n int) []bool {
	if cap(marks) < n {
		return make([]bool, n)
	}
	marks = marks[:n]
	clear(marks)
	return marks
}
