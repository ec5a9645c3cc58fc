package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/colloc/pkg/colloc/internalerr"
	"github.com/cognicore/colloc/pkg/colloc/report"
	"github.com/cognicore/colloc/pkg/colloc/store"
)

var _ store.Store = (*Store)(nil)

func TestSaveGetCopies(t *testing.T) {
	ctx := context.Background()
	st := New()

	run := store.Run{
		Keyword:    "cat",
		WindowSize: 2,
		Rows:       []report.Row{{Collocate: "the", RawFrequency: 3, MI: 0.26}},
	}
	id, err := st.SaveRun(ctx, run)
	require.NoError(t, err)

	run.Rows[0].Collocate = "mutated"

	got, err := st.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "the", got.Rows[0].Collocate)
	assert.False(t, got.CreatedAt.IsZero())

	got.Rows[0].Collocate = "mutated"
	again, err := st.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "the", again.Rows[0].Collocate)
}

func TestDuplicateID(t *testing.T) {
	ctx := context.Background()
	st := New()

	_, err := st.SaveRun(ctx, store.Run{ID: "a"})
	require.NoError(t, err)
	_, err = st.SaveRun(ctx, store.Run{ID: "a"})
	assert.Error(t, err)
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	st := New()

	a, _ := st.SaveRun(ctx, store.Run{Keyword: "cat", Rows: []report.Row{{Collocate: "x"}}})
	b, _ := st.SaveRun(ctx, store.Run{Keyword: "dog"})
	c, _ := st.SaveRun(ctx, store.Run{Keyword: "cat"})

	all, err := st.ListRuns(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, c, all[0].ID)
	assert.Equal(t, a, all[2].ID)
	assert.Nil(t, all[2].Rows)

	cats, err := st.ListRuns(ctx, "cat", 1)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, c, cats[0].ID)

	require.NoError(t, st.DeleteRun(ctx, b))
	assert.ErrorIs(t, st.DeleteRun(ctx, b), internalerr.ErrNotFound)

	_, err = st.GetRun(ctx, b)
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
}
