package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	api "github.com/etesami/iou-tracking-system/api"
	"github.com/etesami/iou-tracking-system/pkg/store"
	"github.com/etesami/iou-tracking-system/pkg/tracker"
)

type replayOptions struct {
	input    string
	sourceId string
	fps      float64
	cfg      tracker.Config
}

func newReplayCmd(root *options) *cobra.Command {
	opts := &replayOptions{cfg: tracker.DefaultConfig()}
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Track a JSONL file of detection frames and print one track array per frame",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runReplay(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), root.dbPath, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "-", "JSONL file with one detection array per line (- for stdin)")
	f.StringVar(&opts.sourceId, "source", "replay", "Source id used when persisting tracks")
	f.Float64Var(&opts.fps, "fps", 30, "Frame rate used to timestamp persisted tracks")
	f.Float64Var(&opts.cfg.IoUThreshold, "iou", opts.cfg.IoUThreshold, "Minimum IoU for a detection to continue a track")
	f.IntVar(&opts.cfg.MaxAge, "max-age", opts.cfg.MaxAge, "Frames a track survives without a match")
	f.IntVar(&opts.cfg.MinHits, "min-hits", opts.cfg.MinHits, "Matches before a track is confirmed")
	return cmd
}

func runReplay(ctx context.Context, stdin io.Reader, stdout io.Writer, dbPath string, opts *replayOptions) (err error) {
	if opts.fps <= 0 {
		return fmt.Errorf("fps must be positive, got %v", opts.fps)
	}
	trk, err := tracker.New[api.Meta](opts.cfg)
	if err != nil {
		return err
	}

	in := stdin
	if opts.input != "-" {
		file, err := os.Open(opts.input)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer file.Close()
		in = file
	}

	var st *store.Store
	if dbPath != "" {
		st, err = store.Open(ctx, dbPath)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, st.Close()) }()
	}

	start := time.Now()
	frameInterval := time.Duration(float64(time.Second) / opts.fps)
	enc := json.NewEncoder(stdout)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var dets []api.Detection
		if err := json.Unmarshal([]byte(text), &dets); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}

		tracks := api.FromTrackerTracks(trk.Advance(api.ToTrackerDetections(dets)))
		if err := enc.Encode(tracks); err != nil {
			return fmt.Errorf("write frame %d: %w", trk.Frame(), err)
		}
		if st != nil {
			ts := start.Add(time.Duration(trk.Frame()-1) * frameInterval)
			if _, err := st.SaveConfirmed(ctx, opts.sourceId, ts, tracks); err != nil {
				return fmt.Errorf("frame %d: %w", trk.Frame(), err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}
