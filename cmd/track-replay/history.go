package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/etesami/iou-tracking-system/pkg/store"
)

func newHistoryCmd(root *options) *cobra.Command {
	var (
		filter       store.Filter
		since, until string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List persisted confirmed tracks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if root.dbPath == "" {
				return fmt.Errorf("--db is required")
			}
			var err error
			if filter.Start, err = parseBound("since", since); err != nil {
				return err
			}
			if filter.End, err = parseBound("until", until); err != nil {
				return err
			}
			return runHistory(cmd.Context(), cmd.OutOrStdout(), root.dbPath, filter)
		},
	}
	f := cmd.Flags()
	f.StringVar(&filter.SourceID, "source", "", "Only tracks of this source")
	f.StringVar(&filter.Label, "label", "", "Only tracks with this label")
	f.Uint64Var(&filter.TrackID, "track", 0, "Only this track id")
	f.IntVar(&filter.Limit, "limit", 0, "Maximum number of rows (0 for all)")
	f.StringVar(&since, "since", "", "Only tracks seen at or after this RFC 3339 time")
	f.StringVar(&until, "until", "", "Only tracks seen before this RFC 3339 time")
	return cmd
}

// parseBound parses an RFC 3339 time flag; empty leaves the bound open.
func parseBound(name, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return t, nil
}

func runHistory(ctx context.Context, out io.Writer, dbPath string, filter store.Filter) (err error) {
	st, err := store.Open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, st.Close()) }()

	recs, err := st.ListTracks(ctx, filter)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(out, "No confirmed tracks found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "TIME\tSOURCE\tTRACK\tLABEL\tSCORE\tBOX\tHITS")
	for _, r := range recs {
		b := r.Track.Bbox
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%.2f\t[%.0f,%.0f,%.0f,%.0f]\t%d\n",
			r.Time.Format(time.RFC3339Nano), r.SourceID, r.Track.Id, b.Label, b.Score,
			b.X1, b.Y1, b.X2, b.Y2, r.Track.Hits)
	}
	return w.Flush()
}
