package api

import (
	"fmt"
	"math"

	"github.com/etesami/iou-tracking-system/pkg/tracker"
)

// Meta is the detector metadata carried through the tracker untouched.
type Meta struct {
	Score float64
	Label string
}

// Detection is the JSON shape of one detector output:
// {"x1":..,"y1":..,"x2":..,"y2":..,"score":..,"label":..}
type Detection struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Score float64 `json:"score"`
	Label string  `json:"label"`
}

// Track is the JSON shape of one emitted track.
type Track struct {
	Id        uint64    `json:"id"`
	Bbox      Detection `json:"bbox"`
	Confirmed bool      `json:"confirmed"`
	Age       int       `json:"age"`
	Hits      int       `json:"hits"`
}

func (d Detection) ToTracker() tracker.Detection[Meta] {
	return tracker.Detection[Meta]{
		Box:     tracker.Box{X1: d.X1, Y1: d.Y1, X2: d.X2, Y2: d.Y2},
		Payload: Meta{Score: d.Score, Label: d.Label},
	}
}

func FromTrackerDetection(d tracker.Detection[Meta]) Detection {
	return Detection{
		X1:    d.X1,
		Y1:    d.Y1,
		X2:    d.X2,
		Y2:    d.Y2,
		Score: d.Payload.Score,
		Label: d.Payload.Label,
	}
}

// ToTrackerDetections converts a frame of detections for Tracker.Advance.
func ToTrackerDetections(dets []Detection) []tracker.Detection[Meta] {
	out := make([]tracker.Detection[Meta], len(dets))
	for i, d := range dets {
		out[i] = d.ToTracker()
	}
	return out
}

// FromTrackerTracks converts the tracker output to its JSON shape.
func FromTrackerTracks(tracks []tracker.Track[Meta]) []Track {
	out := make([]Track, len(tracks))
	for i, t := range tracks {
		out[i] = Track{
			Id:        t.ID,
			Bbox:      FromTrackerDetection(t.Detection),
			Confirmed: t.Confirmed,
			Age:       t.Age,
			Hits:      t.Hits,
		}
	}
	return out
}

// ScoreOf exposes the detector score to tracker post-processors.
func ScoreOf(m Meta) float64 {
	return m.Score
}

// Caption is the overlay text drawn next to a track: "<label> ID:<id> <score>%".
// Missing labels are shown as "obj" and a zero score is omitted.
func Caption(t Track) string {
	label := t.Bbox.Label
	if label == "" {
		label = "obj"
	}
	txt := fmt.Sprintf("%s ID:%d", label, t.Id)
	if t.Bbox.Score != 0 {
		txt += fmt.Sprintf(" %d%%", int(math.Round(t.Bbox.Score*100)))
	}
	return txt
}
