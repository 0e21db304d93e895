package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	api "github.com/etesami/iou-tracking-system/api"
	metric "github.com/etesami/iou-tracking-system/pkg/metric"
	pb "github.com/etesami/iou-tracking-system/pkg/protoc"
	utils "github.com/etesami/iou-tracking-system/pkg/utils"

	"google.golang.org/protobuf/types/known/timestamppb"
)

// MockDetector reports a single fixed detection that slides to the right
// by Step pixels per frame and wraps every Period frames.
type MockDetector struct {
	Base   api.Detection
	Step   float64
	Period int64
}

func NewMockDetector() *MockDetector {
	return &MockDetector{
		Base:   api.Detection{X1: 100, Y1: 100, X2: 220, Y2: 280, Score: 0.85, Label: "person"},
		Step:   2,
		Period: 20,
	}
}

// Detect returns the detections of frameId.
func (d *MockDetector) Detect(frameId int64) []api.Detection {
	dx := 0.0
	if d.Period > 0 {
		dx = d.Step * float64(frameId%d.Period)
	}
	b := d.Base
	b.X1 += dx
	b.X2 += dx
	return []api.Detection{b}
}

// FrameSource yields JPEG-encoded frames. A nil frame with a nil error means
// the frame could not be read; io.EOF ends the stream.
type FrameSource interface {
	Next() ([]byte, error)
}

type Client struct {
	TrackerClientRef *utils.GrpcClient
	SourceId         string
	Detector         *MockDetector
	Frames           FrameSource    // optional
	Metric           *metric.Metric // optional
	Timeout          time.Duration
}

// SendFrame sends the detections of frameId to the tracker and records the
// round-trip time of the call.
func (c *Client) SendFrame(ctx context.Context, frameId int64) (*pb.TrackFrame, error) {
	client := c.TrackerClientRef.Load()
	if client == nil {
		return nil, fmt.Errorf("tracker client is not connected")
	}

	var frame []byte
	if c.Frames != nil {
		var err error
		if frame, err = c.Frames.Next(); err != nil {
			return nil, err
		}
	}

	dets := c.Detector.Detect(frameId)
	req := &pb.DetectionFrame{
		SourceId:   c.SourceId,
		FrameId:    frameId,
		CapturedAt: timestamppb.Now(),
		Detections: make([]*pb.Detection, 0, len(dets)),
		FrameData:  frame,
	}
	for _, d := range dets {
		req.Detections = append(req.Detections, &pb.Detection{X1: d.X1, Y1: d.Y1, X2: d.X2, Y2: d.Y2, Score: d.Score, Label: d.Label})
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	req.SentTimestamp = time.Now().Format(time.RFC3339Nano)
	resp, err := client.SendDetections(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("error sending frame [%d]: %w", frameId, err)
	}
	ackRecTime := time.Now().Format(time.RFC3339Nano)

	if ack := resp.GetAck(); ack != nil && c.Metric != nil {
		rtt, err := utils.CalculateRtt(req.SentTimestamp, ack.ReceivedTimestamp, ack.AckSentTimestamp, ackRecTime)
		if err != nil {
			log.Printf("Error calculating RTT of frame [%d]: %v", frameId, err)
		} else {
			c.Metric.AddRttTime("tracker", rtt)
		}
	}
	return resp, nil
}

// Run sends one frame every interval until ctx is done or the frame source
// ends.
func (c *Client) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var frameId int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		frameId++
		resp, err := c.SendFrame(ctx, frameId)
		if errors.Is(err, io.EOF) {
			log.Printf("Frame source of [%s] ended after [%d] frames", c.SourceId, frameId-1)
			return
		}
		if err != nil {
			log.Printf("Frame [%d] skipped: %v", frameId, err)
			continue
		}
		for _, t := range resp.GetTracks() {
			b := t.Bbox
			if b == nil {
				b = &pb.Detection{}
			}
			caption := api.Caption(api.Track{Id: t.Id, Bbox: api.Detection{Score: b.Score, Label: b.Label}})
			log.Printf("Frame [%d]: %s [%.0f,%.0f,%.0f,%.0f] confirmed [%t] age [%d]",
				frameId, caption, b.X1, b.Y1, b.X2, b.Y2, t.Confirmed, t.Age)
		}
	}
}
