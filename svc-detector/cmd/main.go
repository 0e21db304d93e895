package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	api "github.com/etesami/iou-tracking-system/api"
	metric "github.com/etesami/iou-tracking-system/pkg/metric"
	utils "github.com/etesami/iou-tracking-system/pkg/utils"
	"github.com/etesami/iou-tracking-system/svc-detector/internal"
	"github.com/etesami/iou-tracking-system/svc-detector/internal/video"
)

func main() {

	procTimeBuckets := utils.ParseBuckets(os.Getenv("PROC_TIME_BUCKETS"))
	rttTimeBuckets := utils.ParseBuckets(os.Getenv("RTT_TIME_BUCKETS"))
	m := metric.RegisterMetrics(prometheus.DefaultRegisterer, procTimeBuckets, rttTimeBuckets)

	// Setup the remote service (tracker) to send detections
	REMOTE_TRACKER_HOST := os.Getenv("REMOTE_TRACKER_HOST")
	REMOTE_TRACKER_PORT := os.Getenv("REMOTE_TRACKER_PORT")
	if REMOTE_TRACKER_HOST == "" || REMOTE_TRACKER_PORT == "" {
		panic("REMOTE_TRACKER_HOST or REMOTE_TRACKER_PORT environment variable is not set")
	}
	targetSvc := api.Service{
		Address: REMOTE_TRACKER_HOST,
		Port:    REMOTE_TRACKER_PORT,
	}

	cfg, err := internal.LoadConfig(os.Getenv)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	interval := time.Duration(float64(time.Second) / cfg.FrameRate)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := &internal.Client{
		TrackerClientRef: &utils.GrpcClient{},
		SourceId:         cfg.SourceId,
		Detector:         internal.NewMockDetector(),
		Metric:           m,
		Timeout:          2 * time.Second,
	}

	// Frames are optional; without a video source only detections are sent
	if cfg.VideoSource != "" {
		vi, err := video.Open(&video.Config{VideoSource: cfg.VideoSource, ImageWidth: cfg.ImageWidth, ImageHeight: cfg.ImageHeight})
		if err != nil {
			log.Fatalf("Failed to open video source: %v", err)
		}
		defer vi.Close()
		client.Frames = vi
	}

	go utils.MonitorConnection(ctx, targetSvc, client.TrackerClientRef, 5*time.Second)

	log.Printf("Sending detections of source [%s] to [%s] every [%s]\n", cfg.SourceId, targetSvc.Target(), interval)
	go client.Run(ctx, interval)

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
	cancel()
	if err := server.Shutdown(context.Background()); err != nil {
		log.Printf("Error shutting down server: %v\n", err)
	}
	log.Printf("Detector shut down gracefully\n")
}
