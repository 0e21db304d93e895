package internal

import (
	"context"
	"log"
	"time"

	api "github.com/etesami/iou-tracking-system/api"
	mt "github.com/etesami/iou-tracking-system/pkg/metric"
	pb "github.com/etesami/iou-tracking-system/pkg/protoc"
	"github.com/etesami/iou-tracking-system/pkg/tracker"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// TrackSink persists the confirmed tracks of a frame.
type TrackSink interface {
	SaveConfirmed(ctx context.Context, sourceId string, ts time.Time, tracks []api.Track) (int, error)
}

// FrameRenderer overlays the emitted tracks on the frame image.
type FrameRenderer interface {
	Render(sourceId string, frameId int64, frame []byte, tracks []api.Track) error
}

type Server struct {
	pb.UnimplementedTrackingPipelineServer

	Sources  *Sources
	Filter   tracker.Postprocessor[api.Meta]
	Sink     TrackSink     // optional
	Renderer FrameRenderer // optional
	Metric   *mt.Metric    // optional
}

// NewServer builds a server from cfg. sink and renderer may be nil.
func NewServer(cfg *Config, sink TrackSink, renderer FrameRenderer, m *mt.Metric) (*Server, error) {
	sources, err := NewSources(cfg.Tracker)
	if err != nil {
		return nil, err
	}
	var filters []tracker.Postprocessor[api.Meta]
	if cfg.MinScore > 0 {
		filters = append(filters, tracker.NewScoreFilter(cfg.MinScore, api.ScoreOf))
	}
	if cfg.MinArea > 0 {
		filters = append(filters, tracker.NewAreaFilter[api.Meta](cfg.MinArea))
	}
	return &Server{
		Sources:  sources,
		Filter:   tracker.Chain(filters...),
		Sink:     sink,
		Renderer: renderer,
		Metric:   m,
	}, nil
}

// SendDetections advances the tracker of the frame's source by one frame
func (s *Server) SendDetections(ctx context.Context, recData *pb.DetectionFrame) (*pb.TrackFrame, error) {
	recTime := time.Now()
	log.Printf("Received [Detector] at [%s]: source [%s] frame [%d] detections [%d]\n",
		recTime.Format(time.RFC3339Nano), recData.SourceId, recData.FrameId, len(recData.Detections))

	if recData.SourceId == "" {
		return nil, status.Errorf(codes.InvalidArgument, "source id is empty")
	}
	src, err := s.Sources.Get(recData.SourceId)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "tracker for source %s: %v", recData.SourceId, err)
	}

	dets := make([]api.Detection, 0, len(recData.Detections))
	for _, d := range recData.GetDetections() {
		if d == nil {
			continue
		}
		dets = append(dets, api.Detection{X1: d.X1, Y1: d.Y1, X2: d.X2, Y2: d.Y2, Score: d.Score, Label: d.Label})
	}
	in := api.ToTrackerDetections(dets)
	if s.Filter != nil {
		in = s.Filter(in)
	}

	st := time.Now()
	out, stats := src.Advance(in)
	procMs := float64(time.Since(st).Microseconds()) / 1000.0
	tracks := api.FromTrackerTracks(out)

	if s.Metric != nil {
		s.Metric.AddProcessingTime("tracker", procMs)
		s.Metric.AddFrame(recData.SourceId, len(in), stats.Created, stats.Removed, stats.Confirmed, stats.Tentative)
	}

	ts := recTime
	if recData.CapturedAt != nil {
		ts = recData.CapturedAt.AsTime()
	}
	if s.Sink != nil {
		if n, err := s.Sink.SaveConfirmed(ctx, recData.SourceId, ts, tracks); err != nil {
			log.Printf("Error saving tracks of frame [%d]: %v", recData.FrameId, err)
		} else if n > 0 {
			log.Printf("Frame [%d]: saved [%d] confirmed tracks", recData.FrameId, n)
		}
	}
	if s.Renderer != nil && len(recData.FrameData) > 0 {
		if err := s.Renderer.Render(recData.SourceId, recData.FrameId, recData.FrameData, tracks); err != nil {
			log.Printf("Error rendering frame [%d]: %v", recData.FrameId, err)
		}
	}

	log.Printf("Frame [%d]: tracker frame [%d], matched [%d], created [%d], removed [%d], live [%d]",
		recData.FrameId, stats.Frame, stats.Matched, stats.Created, stats.Removed, len(tracks))

	resp := &pb.TrackFrame{
		SourceId: recData.SourceId,
		FrameId:  recData.FrameId,
		Tracks:   make([]*pb.Track, 0, len(tracks)),
	}
	for _, t := range tracks {
		b := t.Bbox
		resp.Tracks = append(resp.Tracks, &pb.Track{
			Id:        t.Id,
			Bbox:      &pb.Detection{X1: b.X1, Y1: b.Y1, X2: b.X2, Y2: b.Y2, Score: b.Score, Label: b.Label},
			Confirmed: t.Confirmed,
			Age:       int64(t.Age),
			Hits:      int64(t.Hits),
		})
	}
	resp.Ack = &pb.Ack{
		Status:                "ok",
		OriginalSentTimestamp: recData.SentTimestamp,
		ReceivedTimestamp:     recTime.Format(time.RFC3339Nano),
		AckSentTimestamp:      time.Now().Format(time.RFC3339Nano),
	}
	return resp, nil
}

// ResetSource clears the live tracks of a source. Track IDs of the source keep
// increasing, so persisted rows of earlier objects are never reused. With
// Forget set the source is dropped altogether and its IDs start over.
func (s *Server) ResetSource(ctx context.Context, recData *pb.SourceRequest) (*pb.Ack, error) {
	recTime := time.Now().Format(time.RFC3339Nano)
	if recData.SourceId == "" {
		return nil, status.Errorf(codes.InvalidArgument, "source id is empty")
	}

	ack := &pb.Ack{
		Status:                "ok",
		OriginalSentTimestamp: recData.SentTimestamp,
		ReceivedTimestamp:     recTime,
	}
	switch {
	case recData.Forget:
		if !s.Sources.Delete(recData.SourceId) {
			ack.Status = "not found"
			break
		}
		log.Printf("Removed tracker of source [%s]\n", recData.SourceId)
		if s.Metric != nil {
			s.Metric.DropSource(recData.SourceId)
		}
	case !s.Sources.Reset(recData.SourceId):
		ack.Status = "not found"
	default:
		log.Printf("Cleared tracks of source [%s]\n", recData.SourceId)
		if s.Metric != nil {
			s.Metric.DropSource(recData.SourceId)
		}
	}
	ack.AckSentTimestamp = time.Now().Format(time.RFC3339Nano)
	return ack, nil
}
