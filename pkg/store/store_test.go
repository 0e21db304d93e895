package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "github.com/etesami/iou-tracking-system/api"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveConfirmed_OnlyConfirmed(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	ts := time.Unix(1700000000, 0)

	n, err := s.SaveConfirmed(ctx, "cam-1", ts, []api.Track{
		{Id: 1, Confirmed: true, Hits: 3, Bbox: api.Detection{X1: 0, Y1: 0, X2: 10, Y2: 10, Score: 0.9, Label: "person"}},
		{Id: 2, Confirmed: false, Hits: 1, Bbox: api.Detection{X1: 5, Y1: 5, X2: 8, Y2: 8, Score: 0.4, Label: "dog"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	recs, err := s.ListTracks(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "cam-1", recs[0].SourceID)
	assert.True(t, ts.Equal(recs[0].Time))
	assert.Equal(t, api.Track{
		Id:        1,
		Confirmed: true,
		Hits:      3,
		Bbox:      api.Detection{X1: 0, Y1: 0, X2: 10, Y2: 10, Score: 0.9, Label: "person"},
	}, recs[0].Track)
}

func TestSaveConfirmed_NothingConfirmed(t *testing.T) {
	s := openTestStore(t)

	n, err := s.SaveConfirmed(context.Background(), "cam-1", time.Now(), []api.Track{{Id: 1}})
	require.NoError(t, err)
	assert.Zero(t, n)

	recs, err := s.ListTracks(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestListTracks_Filters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Unix(1700000000, 0)

	for i := 0; i < 5; i++ {
		src := "cam-1"
		if i%2 == 1 {
			src = "cam-2"
		}
		_, err := s.SaveConfirmed(ctx, src, base.Add(time.Duration(i)*time.Second), []api.Track{
			{Id: 1, Confirmed: true, Hits: i + 1, Bbox: api.Detection{X2: 1, Y2: 1, Label: "person"}},
			{Id: 2, Confirmed: true, Hits: 1, Bbox: api.Detection{X2: 1, Y2: 1, Label: "car"}},
		})
		require.NoError(t, err)
	}

	recs, err := s.ListTracks(ctx, Filter{SourceID: "cam-1"})
	require.NoError(t, err)
	assert.Len(t, recs, 6)

	recs, err = s.ListTracks(ctx, Filter{Label: "car", SourceID: "cam-2"})
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	recs, err = s.ListTracks(ctx, Filter{TrackID: 1, Start: base.Add(time.Second), End: base.Add(3 * time.Second)})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 2, recs[0].Track.Hits)
	assert.Equal(t, 3, recs[1].Track.Hits)

	recs, err = s.ListTracks(ctx, Filter{Limit: 3})
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, uint64(1), recs[0].Track.Id)
	assert.Equal(t, uint64(2), recs[1].Track.Id)
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracks.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = s.SaveConfirmed(ctx, "cam-1", time.Unix(1, 0), []api.Track{{Id: 9, Confirmed: true, Hits: 1}})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// schema creation is idempotent and data survives reopening
	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	recs, err := s.ListTracks(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, uint64(9), recs[0].Track.Id)
}
