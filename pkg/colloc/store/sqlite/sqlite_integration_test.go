package sqlite

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/colloc/pkg/colloc/internalerr"
	"github.com/cognicore/colloc/pkg/colloc/report"
	"github.com/cognicore/colloc/pkg/colloc/store"
)

func openTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "colloc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleRun(keyword string, w int) store.Run {
	return store.Run{
		Keyword:    keyword,
		WindowSize: w,
		Policy:     "reference",
		CorpusDir:  "data/corpus",
		N:          9,
		R1:         5,
		Rows: []report.Row{
			{Index: 1, Collocate: "sat", RawFrequency: 1, MI: 0.8479969065549501},
			{Index: 0, Collocate: "the", RawFrequency: 3, MI: 0.2630344058337938},
			{Index: 4, Collocate: "odd", RawFrequency: 2, MI: math.Inf(-1)},
		},
	}
}

func TestSaveAndGetRun(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	id, err := st.SaveRun(ctx, sampleRun("cat", 2))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := st.GetRun(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, id, got.ID)
	assert.Equal(t, "cat", got.Keyword)
	assert.Equal(t, 2, got.WindowSize)
	assert.Equal(t, "reference", got.Policy)
	assert.Equal(t, "data/corpus", got.CorpusDir)
	assert.EqualValues(t, 9, got.N)
	assert.EqualValues(t, 5, got.R1)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Equal(t, sampleRun("cat", 2).Rows, got.Rows)
}

func TestSaveRunKeepsExplicitIDAndTime(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	created := time.Date(2024, 3, 1, 10, 30, 0, 123, time.UTC)
	run := sampleRun("cat", 2)
	run.ID = "01HQZZZZZZZZZZZZZZZZZZZZZZ"
	run.CreatedAt = created

	id, err := st.SaveRun(ctx, run)
	require.NoError(t, err)
	assert.Equal(t, run.ID, id)

	got, err := st.GetRun(ctx, id)
	require.NoError(t, err)
	assert.True(t, created.Equal(got.CreatedAt))

	_, err = st.SaveRun(ctx, run)
	assert.Error(t, err, "duplicate id should fail")
}

func TestNaNSurvivesRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	run := sampleRun("cat", 2)
	run.Rows = []report.Row{{Collocate: "x", RawFrequency: 1, MI: math.NaN()}}

	id, err := st.SaveRun(ctx, run)
	require.NoError(t, err)

	got, err := st.GetRun(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.Rows, 1)
	assert.True(t, math.IsNaN(got.Rows[0].MI))
}

func TestEmptyRun(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	run := sampleRun("dog", 2)
	run.Rows = nil
	run.R1 = 0

	id, err := st.SaveRun(ctx, run)
	require.NoError(t, err)

	got, err := st.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, got.Rows)
}

func TestGetRunNotFound(t *testing.T) {
	st := openTestStore(t)

	_, err := st.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
}

func TestListRuns(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	first, err := st.SaveRun(ctx, sampleRun("cat", 2))
	require.NoError(t, err)
	second, err := st.SaveRun(ctx, sampleRun("whale", 5))
	require.NoError(t, err)
	third, err := st.SaveRun(ctx, sampleRun("cat", 4))
	require.NoError(t, err)

	all, err := st.ListRuns(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{third, second, first}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Nil(t, all[0].Rows, "list should not load rows")

	cats, err := st.ListRuns(ctx, "cat", 0)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, 4, cats[0].WindowSize)

	limited, err := st.ListRuns(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, third, limited[0].ID)
}

func TestDeleteRunCascades(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	id, err := st.SaveRun(ctx, sampleRun("cat", 2))
	require.NoError(t, err)

	require.NoError(t, st.DeleteRun(ctx, id))

	_, err = st.GetRun(ctx, id)
	assert.ErrorIs(t, err, internalerr.ErrNotFound)

	var orphans int
	db := st.(*sqliteStore).db
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM run_rows WHERE run_id = ?", id).Scan(&orphans))
	assert.Zero(t, orphans)

	assert.ErrorIs(t, st.DeleteRun(ctx, id), internalerr.ErrNotFound)
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "colloc.db")

	st, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	id, err := st.SaveRun(ctx, sampleRun("cat", 2))
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer st.Close()

	got, err := st.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Len(t, got.Rows, 3)
}

func TestInMemoryDatabase(t *testing.T) {
	ctx := context.Background()
	st, err := OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	defer st.Close()

	id, err := st.SaveRun(ctx, sampleRun("cat", 2))
	require.NoError(t, err)

	_, err = st.GetRun(ctx, id)
	require.NoError(t, err)
}
