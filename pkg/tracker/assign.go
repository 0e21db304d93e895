package tracker

import (
	"cmp"
	"slices"
)

// pair is one (track, detection) candidate with its overlap.
type pair struct {
	track int
	det   int
	iou   float64
}

// assignGreedy walks all track/detection pairs from highest to lowest IoU and
// accepts a pair when both sides are still free. Pairs with equal IoU keep
// their track-major insertion order, so the result is deterministic for a
// given input order but not globally optimal.
func (t *Tracker[P]) assignGreedy(dets []Detection[P]) []pair {
	pairs := t.pairs[:0]
	for i := range t.tracks {
		for j := range dets {
			pairs = append(pairs, pair{track: i, det: j, iou: IoU(t.tracks[i].det.Box, dets[j].Box)})
		}
	}
	slices.SortStableFunc(pairs, func(a, b pair) int {
		return cmp.Compare(b.iou, a.iou)
	})
	t.pairs = pairs

	var matches []pair
	for _, p := range pairs {
		// sorted descending: everything after this is below threshold too
		if p.iou < t.cfg.IoUThreshold {
			break
		}
		if t.trackMatched[p.track] || t.detMatched[p.det] {
			continue
		}
		t.trackMatched[p.track] = true
		t.detMatched[p.det] = true
		matches = append(matches, p)
	}
	return matches
}
