package utils

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	api "github.com/etesami/iou-tracking-system/api"
	pb "github.com/etesami/iou-tracking-system/pkg/protoc"

	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
)

// GrpcClient holds the current tracker client; Load returns nil until a
// connection has been established.
type GrpcClient struct {
	v atomic.Value
}

type clientBox struct {
	c pb.TrackingPipelineClient
}

func (g *GrpcClient) Load() pb.TrackingPipelineClient {
	if b, ok := g.v.Load().(clientBox); ok {
		return b.c
	}
	return nil
}

func (g *GrpcClient) Store(c pb.TrackingPipelineClient) {
	g.v.Store(clientBox{c: c})
}

// CalculateRtt calculates the transit time in milliseconds, excluding the
// time spent in the remote service. All timestamps are RFC3339Nano.
func CalculateRtt(msgSentTime, msgRecTime, ackSentTime, ackRecTime string) (float64, error) {
	msgSent, err1 := time.Parse(time.RFC3339Nano, msgSentTime)
	msgRec, err2 := time.Parse(time.RFC3339Nano, msgRecTime)
	ackSent, err3 := time.Parse(time.RFC3339Nano, ackSentTime)
	ackRec, err4 := time.Parse(time.RFC3339Nano, ackRecTime)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return -1, fmt.Errorf("error parsing timestamps: (%v, %v, %v, %v)", err1, err2, err3, err4)
	}
	t1 := msgRec.Sub(msgSent)
	t2 := ackRec.Sub(ackSent)
	rtt := float64((t1 + t2).Microseconds()) / 1000.0
	return rtt, nil
}

// ParseBuckets parses a comma-separated string of bucket values into a slice of float64
func ParseBuckets(env string) []float64 {
	if env == "" {
		return nil
	}
	parts := strings.Split(env, ",")
	var buckets []float64
	for _, p := range parts {
		if f, err := strconv.ParseFloat(strings.TrimSpace(p), 64); err == nil {
			buckets = append(buckets, f)
		} else {
			log.Printf("Error parsing bucket value '%s': %v\n", p, err)
			return nil
		}
	}
	return buckets
}

// MonitorConnection keeps clientRef pointed at a ready connection to
// targetSvc, checking every interval until ctx is done.
func MonitorConnection(ctx context.Context, targetSvc api.Service, clientRef *GrpcClient, interval time.Duration) {
	var conn *grpc.ClientConn
	defer func() {
		if conn != nil {
			conn.Close()
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		conn = checkConnection(targetSvc, clientRef, conn)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func checkConnection(targetSvc api.Service, clientRef *GrpcClient, conn *grpc.ClientConn) *grpc.ClientConn {
	if err := targetSvc.ServiceReachable(); err != nil {
		if conn != nil {
			conn.Close()
		}
		log.Printf("Target service [%s] is not reachable: %v", targetSvc.Target(), err)
		return nil
	}

	if conn != nil {
		state := conn.GetState()
		if state == connectivity.Ready || state == connectivity.Idle || state == connectivity.Connecting {
			return conn
		}
		conn.Close()
	}

	newConn, err := grpc.NewClient(
		targetSvc.Target(),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Println("Failed to connect:", err)
		return nil
	}
	clientRef.Store(pb.NewTrackingPipelineClient(newConn))
	log.Println("gRPC client connected and stored")
	return newConn
}
