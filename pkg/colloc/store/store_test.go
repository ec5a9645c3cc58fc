package store

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/colloc/pkg/colloc/report"
)

func TestNewIDIsSortedULID(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	a := NewID(now)
	b := NewID(now)
	c := NewID(now.Add(time.Second))

	for id, at := range map[string]time.Time{a: now, b: now, c: now.Add(time.Second)} {
		parsed, err := ulid.ParseStrict(id)
		require.NoError(t, err)
		assert.Equal(t, ulid.Timestamp(at), parsed.Time())
	}
	assert.Less(t, a, b)
	assert.Less(t, b, c)
}

func TestPrepare(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))

	r := Prepare(Run{Keyword: "cat"}, now)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, now.UTC(), r.CreatedAt)

	kept := Prepare(Run{ID: "fixed", CreatedAt: now}, time.Now())
	assert.Equal(t, "fixed", kept.ID)
	assert.Equal(t, now, kept.CreatedAt)
}

func TestReportRoundTrip(t *testing.T) {
	rep := report.Report{
		Keyword:    "cat",
		WindowSize: 2,
		Policy:     "reference",
		N:          9,
		R1:         5,
		Rows:       []report.Row{{Collocate: "the", RawFrequency: 3, MI: 0.26}},
	}

	run := FromReport(rep, "corpus")
	assert.Equal(t, "corpus", run.CorpusDir)
	assert.Equal(t, rep, run.Report())
}
