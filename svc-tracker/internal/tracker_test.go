package internal

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/timestamppb"

	api "github.com/etesami/iou-tracking-system/api"
	mt "github.com/etesami/iou-tracking-system/pkg/metric"
	pb "github.com/etesami/iou-tracking-system/pkg/protoc"
	"github.com/etesami/iou-tracking-system/pkg/store"
)

type fakeRenderer struct {
	mu     sync.Mutex
	frames []int64
}

func (f *fakeRenderer) Render(sourceId string, frameId int64, frame []byte, tracks []api.Track) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, frameId)
	return nil
}

func startServer(t *testing.T, s *Server) pb.TrackingPipelineClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	pb.RegisterTrackingPipelineServer(gs, s)
	go gs.Serve(lis)
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return pb.NewTrackingPipelineClient(conn)
}

func defaultServer(t *testing.T, sink TrackSink, renderer FrameRenderer) *Server {
	t.Helper()
	cfg, err := LoadConfig(func(string) string { return "" })
	require.NoError(t, err)
	s, err := NewServer(cfg, sink, renderer, mt.RegisterMetrics(prometheus.NewRegistry(), nil, nil))
	require.NoError(t, err)
	return s
}

func frame(source string, id int64, dets ...*pb.Detection) *pb.DetectionFrame {
	return &pb.DetectionFrame{
		SourceId:      source,
		FrameId:       id,
		CapturedAt:    timestamppb.New(time.Unix(1700000000+id, 0)),
		Detections:    dets,
		SentTimestamp: time.Now().Format(time.RFC3339Nano),
	}
}

func TestSendDetections_TracksAcrossFrames(t *testing.T) {
	st, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	defer st.Close()
	renderer := &fakeRenderer{}
	client := startServer(t, defaultServer(t, st, renderer))
	ctx := context.Background()

	resp, err := client.SendDetections(ctx, frame("cam-1", 1, &pb.Detection{X1: 0, Y1: 0, X2: 10, Y2: 10, Score: 0.9, Label: "person"}))
	require.NoError(t, err)
	require.Len(t, resp.GetTracks(), 1)
	assert.Equal(t, uint64(1), resp.Tracks[0].Id)
	assert.True(t, resp.Tracks[0].Confirmed)
	assert.Equal(t, "ok", resp.GetAck().Status)
	assert.NotEmpty(t, resp.Ack.ReceivedTimestamp)

	f2 := frame("cam-1", 2, &pb.Detection{X1: 1, Y1: 1, X2: 11, Y2: 11, Score: 0.85, Label: "person"})
	f2.FrameData = []byte{0xff, 0xd8}
	resp, err = client.SendDetections(ctx, f2)
	require.NoError(t, err)
	require.Len(t, resp.Tracks, 1)
	assert.Equal(t, uint64(1), resp.Tracks[0].Id)
	assert.Equal(t, int64(2), resp.Tracks[0].Hits)
	assert.Equal(t, 0.85, resp.Tracks[0].Bbox.Score)

	// sources are tracked independently
	resp, err = client.SendDetections(ctx, frame("cam-2", 1, &pb.Detection{X1: 0, Y1: 0, X2: 10, Y2: 10, Score: 0.9, Label: "car"}))
	require.NoError(t, err)
	require.Len(t, resp.Tracks, 1)
	assert.Equal(t, uint64(1), resp.Tracks[0].Id)

	recs, err := st.ListTracks(ctx, store.Filter{SourceID: "cam-1"})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.True(t, time.Unix(1700000002, 0).Equal(recs[1].Time))

	assert.Equal(t, []int64{2}, renderer.frames)
}

func TestSendDetections_Filters(t *testing.T) {
	cfg, err := LoadConfig(func(k string) string {
		return map[string]string{"MIN_SCORE": "0.5", "MIN_AREA": "10"}[k]
	})
	require.NoError(t, err)
	s, err := NewServer(cfg, nil, nil, nil)
	require.NoError(t, err)
	client := startServer(t, s)

	resp, err := client.SendDetections(context.Background(), frame("cam-1", 1,
		&pb.Detection{X1: 0, Y1: 0, X2: 10, Y2: 10, Score: 0.9, Label: "keep"},
		&pb.Detection{X1: 20, Y1: 20, X2: 30, Y2: 30, Score: 0.1, Label: "low-score"},
		&pb.Detection{X1: 40, Y1: 40, X2: 42, Y2: 42, Score: 0.9, Label: "tiny"},
		nil,
	))
	require.NoError(t, err)
	require.Len(t, resp.Tracks, 1)
	assert.Equal(t, "keep", resp.Tracks[0].Bbox.Label)
}

func TestSendDetections_EmptySource(t *testing.T) {
	client := startServer(t, defaultServer(t, nil, nil))

	_, err := client.SendDetections(context.Background(), frame("", 1))
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestResetSource(t *testing.T) {
	s := defaultServer(t, nil, nil)
	client := startServer(t, s)
	ctx := context.Background()

	_, err := client.SendDetections(ctx, frame("cam-1", 1, &pb.Detection{X1: 0, Y1: 0, X2: 10, Y2: 10}))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Sources.Len())

	ack, err := client.ResetSource(ctx, &pb.SourceRequest{SourceId: "cam-1"})
	require.NoError(t, err)
	assert.Equal(t, "ok", ack.Status)
	assert.Equal(t, 1, s.Sources.Len())

	// identities continue after a reset
	resp, err := client.SendDetections(ctx, frame("cam-1", 2, &pb.Detection{X1: 0, Y1: 0, X2: 10, Y2: 10}))
	require.NoError(t, err)
	require.Len(t, resp.Tracks, 1)
	assert.Equal(t, uint64(2), resp.Tracks[0].Id)

	ack, err = client.ResetSource(ctx, &pb.SourceRequest{SourceId: "cam-2"})
	require.NoError(t, err)
	assert.Equal(t, "not found", ack.Status)

	_, err = client.ResetSource(ctx, &pb.SourceRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestResetSource_Forget(t *testing.T) {
	s := defaultServer(t, nil, nil)
	client := startServer(t, s)
	ctx := context.Background()

	_, err := client.SendDetections(ctx, frame("cam-1", 1, &pb.Detection{X1: 0, Y1: 0, X2: 10, Y2: 10}))
	require.NoError(t, err)

	ack, err := client.ResetSource(ctx, &pb.SourceRequest{SourceId: "cam-1", Forget: true})
	require.NoError(t, err)
	assert.Equal(t, "ok", ack.Status)
	assert.Equal(t, 0, s.Sources.Len())

	ack, err = client.ResetSource(ctx, &pb.SourceRequest{SourceId: "cam-1", Forget: true})
	require.NoError(t, err)
	assert.Equal(t, "not found", ack.Status)

	// a forgotten source starts again from id 1
	resp, err := client.SendDetections(ctx, frame("cam-1", 2, &pb.Detection{X1: 0, Y1: 0, X2: 10, Y2: 10}))
	require.NoError(t, err)
	require.Len(t, resp.Tracks, 1)
	assert.Equal(t, uint64(1), resp.Tracks[0].Id)
}

func TestResetSource_PersistedIdentities(t *testing.T) {
	st, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	defer st.Close()
	client := startServer(t, defaultServer(t, st, nil))
	ctx := context.Background()

	_, err = client.SendDetections(ctx, frame("cam-1", 1, &pb.Detection{X1: 0, Y1: 0, X2: 10, Y2: 10, Score: 0.9, Label: "person"}))
	require.NoError(t, err)
	_, err = client.ResetSource(ctx, &pb.SourceRequest{SourceId: "cam-1"})
	require.NoError(t, err)
	_, err = client.SendDetections(ctx, frame("cam-1", 2, &pb.Detection{X1: 500, Y1: 500, X2: 510, Y2: 510, Score: 0.8, Label: "car"}))
	require.NoError(t, err)

	first, err := st.ListTracks(ctx, store.Filter{SourceID: "cam-1", TrackID: 1})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "person", first[0].Track.Bbox.Label)

	second, err := st.ListTracks(ctx, store.Filter{SourceID: "cam-1", TrackID: 2})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "car", second[0].Track.Bbox.Label)
}

func TestSources_ConcurrentFrames(t *testing.T) {
	s := defaultServer(t, nil, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			x := float64(i * 100)
			_, err := s.SendDetections(ctx, frame("cam-1", int64(i), &pb.Detection{X1: x, Y1: 0, X2: x + 10, Y2: 10}))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	src, err := s.Sources.Get("cam-1")
	require.NoError(t, err)
	out, stats := src.Advance(nil)
	assert.Equal(t, uint64(21), stats.Frame)
	assert.Len(t, out, 20)
}
