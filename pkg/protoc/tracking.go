// Package protoc defines the messages and gRPC service exchanged between the
// detector and tracker services. Messages travel with the "json" codec
// registered in codec.go.
package protoc

import (
	"google.golang.org/protobuf/types/known/timestamppb"
)

type Detection struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Score float64 `json:"score"`
	Label string  `json:"label"`
}

// DetectionFrame is one detector batch for a source.
type DetectionFrame struct {
	SourceId      string                 `json:"source_id"`
	FrameId       int64                  `json:"frame_id"`
	CapturedAt    *timestamppb.Timestamp `json:"captured_at,omitempty"`
	Detections    []*Detection           `json:"detections"`
	FrameData     []byte                 `json:"frame_data,omitempty"` // optional JPEG for the renderer
	SentTimestamp string                 `json:"sent_timestamp"`
}

type Track struct {
	Id        uint64     `json:"id"`
	Bbox      *Detection `json:"bbox"`
	Confirmed bool       `json:"confirmed"`
	Age       int64      `json:"age"`
	Hits      int64      `json:"hits"`
}

// TrackFrame is the tracker answer for one DetectionFrame.
type TrackFrame struct {
	SourceId string   `json:"source_id"`
	FrameId  int64    `json:"frame_id"`
	Tracks   []*Track `json:"tracks"`
	Ack      *Ack     `json:"ack"`
}

// SourceRequest addresses the tracker of one source. Forget drops the source
// altogether instead of only clearing its tracks.
type SourceRequest struct {
	SourceId      string `json:"source_id"`
	Forget        bool   `json:"forget,omitempty"`
	SentTimestamp string `json:"sent_timestamp"`
}

type Ack struct {
	Status                string `json:"status"`
	OriginalSentTimestamp string `json:"original_sent_timestamp"`
	ReceivedTimestamp     string `json:"received_timestamp"`
	AckSentTimestamp      string `json:"ack_sent_timestamp"`
}

func (x *DetectionFrame) GetDetections() []*Detection {
	if x != nil {
		return x.Detections
	}
	return nil
}

func (x *TrackFrame) GetTracks() []*Track {
	if x != nil {
		return x.Tracks
	}
	return nil
}

func (x *TrackFrame) GetAck() *Ack {
	if x != nil {
		return x.Ack
	}
	return nil
}
