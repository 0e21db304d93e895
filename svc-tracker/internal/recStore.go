package internal

import (
	"sync"

	api "github.com/etesami/iou-tracking-system/api"
	"github.com/etesami/iou-tracking-system/pkg/tracker"
)

// Sources keeps one tracker per video source.
type Sources struct {
	cfg     tracker.Config
	mu      sync.Mutex
	sources map[string]*SourceTracker
}

// SourceTracker serializes frames of a single source onto its tracker.
type SourceTracker struct {
	mu      sync.Mutex
	tracker *tracker.Tracker[api.Meta]
}

func NewSources(cfg tracker.Config) (*Sources, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Sources{
		cfg:     cfg,
		sources: make(map[string]*SourceTracker),
	}, nil
}

// Get returns the tracker of sourceId, creating it on first use.
func (s *Sources) Get(sourceId string) (*SourceTracker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.sources[sourceId]; ok {
		return st, nil
	}
	t, err := tracker.New[api.Meta](s.cfg)
	if err != nil {
		return nil, err
	}
	st := &SourceTracker{tracker: t}
	s.sources[sourceId] = st
	return st, nil
}

// Reset drops the live tracks of sourceId, keeping its frame and identity
// counters, and reports whether the source existed.
func (s *Sources) Reset(sourceId string) bool {
	s.mu.Lock()
	st, ok := s.sources[sourceId]
	s.mu.Unlock()
	if !ok {
		return false
	}
	st.Reset()
	return true
}

// Delete forgets sourceId entirely and reports whether it existed. A later
// frame of the same source starts a new tracker, so its IDs start over.
func (s *Sources) Delete(sourceId string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sources[sourceId]; !ok {
		return false
	}
	delete(s.sources, sourceId)
	return true
}

func (s *Sources) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sources)
}

// Advance runs one frame through the source tracker.
func (st *SourceTracker) Advance(dets []tracker.Detection[api.Meta]) ([]tracker.Track[api.Meta], tracker.FrameStats) {
	st.mu.Lock()
	defer st.mu.Unlock()
	tracks := st.tracker.Advance(dets)
	return tracks, st.tracker.Stats()
}

// Reset drops the live tracks of the source.
func (st *SourceTracker) Reset() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.tracker.Reset()
}
