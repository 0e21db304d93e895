package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	api "github.com/etesami/iou-tracking-system/api"
	metric "github.com/etesami/iou-tracking-system/pkg/metric"
	pb "github.com/etesami/iou-tracking-system/pkg/protoc"
	"github.com/etesami/iou-tracking-system/pkg/store"
	utils "github.com/etesami/iou-tracking-system/pkg/utils"
	"github.com/etesami/iou-tracking-system/svc-tracker/internal"
	"github.com/etesami/iou-tracking-system/svc-tracker/internal/render"
)

func main() {

	procTimeBuckets := utils.ParseBuckets(os.Getenv("PROC_TIME_BUCKETS"))
	rttTimeBuckets := utils.ParseBuckets(os.Getenv("RTT_TIME_BUCKETS"))
	m := metric.RegisterMetrics(prometheus.DefaultRegisterer, procTimeBuckets, rttTimeBuckets)

	svcHost := os.Getenv("SVC_TRACKER_HOST")
	svcPort := os.Getenv("SVC_TRACKER_PORT")
	if svcPort == "" || svcHost == "" {
		panic("SVC_TRACKER_HOST or SVC_TRACKER_PORT environment variable is not set")
	}
	localSvc := &api.Service{
		Address: svcHost,
		Port:    svcPort,
	}

	cfg, err := internal.LoadConfig(os.Getenv)
	if err != nil {
		log.Fatalf("Invalid tracker configuration: %v", err)
	}
	log.Printf("Tracker config: iou [%.2f] max age [%d] min hits [%d]\n",
		cfg.Tracker.IoUThreshold, cfg.Tracker.MaxAge, cfg.Tracker.MinHits)

	var sink internal.TrackSink
	var st *store.Store
	if cfg.DBPath != "" {
		st, err = store.Open(context.Background(), cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to open track store: %v", err)
		}
		sink = st
		log.Printf("Persisting confirmed tracks to [%s]\n", cfg.DBPath)
	}

	var renderer internal.FrameRenderer
	if cfg.SaveImage {
		renderer = render.New(&render.Config{
			SaveImagePath:      cfg.SaveImagePath,
			SaveImageFrequency: cfg.SaveImageFrequency,
		})
	}

	s, err := internal.NewServer(cfg, sink, renderer, m)
	if err != nil {
		log.Fatalf("Failed to create tracker server: %v", err)
	}

	// We listen on all interfaces
	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", localSvc.Port))
	if err != nil {
		log.Fatalf("Failed to listen: %v", err)
	}

	grpcServer := grpc.NewServer()
	pb.RegisterTrackingPipelineServer(grpcServer, s)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(pb.TrackingPipelineServiceName, healthpb.HealthCheckResponse_SERVING)

	go func() {
		log.Printf("starting gRPC server on port %s:%s\n", localSvc.Address, localSvc.Port)
		if err := grpcServer.Serve(listener); err != nil {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	metricAddr := os.Getenv("METRIC_ADDR")
	metricPort := os.Getenv("METRIC_PORT")
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", metricAddr, metricPort),
		Handler: mux,
	}

	go func() {
		log.Printf("Starting metrics server on %s\n", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	log.Printf("Received shutdown signal\n")
	healthServer.Shutdown()
	grpcServer.GracefulStop()

	err = server.Shutdown(context.Background())
	if st != nil {
		err = multierr.Append(err, st.Close())
	}
	if err != nil {
		log.Printf("Error shutting down: %v\n", err)
	}
	log.Printf("Server shut down gracefully\n")
}
