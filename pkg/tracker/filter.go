package tracker

// Postprocessor filters or modifies a frame of detections before tracking.
type Postprocessor[P any] func([]Detection[P]) []Detection[P]

// NewAreaFilter returns a function that filters out detections below a certain area.
func NewAreaFilter[P any](area float64) Postprocessor[P] {
	return func(in []Detection[P]) []Detection[P] {
		out := make([]Detection[P], 0, len(in))
		for _, d := range in {
			if d.Area() >= area {
				out = append(out, d)
			}
		}
		return out
	}
}

// NewScoreFilter returns a function that filters out detections whose score,
// as reported by score, is below conf.
func NewScoreFilter[P any](conf float64, score func(P) float64) Postprocessor[P] {
	return func(in []Detection[P]) []Detection[P] {
		out := make([]Detection[P], 0, len(in))
		for _, d := range in {
			if score(d.Payload) >= conf {
				out = append(out, d)
			}
		}
		return out
	}
}

// Chain applies the postprocessors in order. Nil entries are skipped.
func Chain[P any](pp ...Postprocessor[P]) Postprocessor[P] {
	return func(in []Detection[P]) []Detection[P] {
		for _, p := range pp {
			if p != nil {
				in = p(in)
			}
		}
		return in
	}
}
