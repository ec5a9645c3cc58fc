package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/colloc/pkg/colloc/report"
)

// Store persists finished collocation reports so runs over the same corpus
// can be compared later.
type Store interface {
	Close() error

	SaveRun(ctx context.Context, r Run) (string, error)
	GetRun(ctx context.Context, id string) (Run, error)
	// ListRuns returns runs newest first, without rows. An empty keyword
	// matches every run; limit <= 0 means no limit.
	ListRuns(ctx context.Context, keyword string, limit int) ([]Run, error)
	DeleteRun(ctx context.Context, id string) error
}

// Run is one stored report
type Run struct {
	ID         string
	Keyword    string
	WindowSize int
	Policy     string
	CorpusDir  string
	N          int64
	R1         int64
	CreatedAt  time.Time
	Rows       []report.Row
}

// FromReport wraps a report for storage.
func FromReport(rep report.Report, corpusDir string) Run {
	return Run{
		Keyword:    rep.Keyword,
		WindowSize: rep.WindowSize,
		Policy:     rep.Policy,
		CorpusDir:  corpusDir,
		N:          rep.N,
		R1:         rep.R1,
		Rows:       rep.Rows,
	}
}

// Report converts a stored run back into a report.
func (r Run) Report() report.Report {
	return report.Report{
		Keyword:    r.Keyword,
		WindowSize: r.WindowSize,
		Policy:     r.Policy,
		N:          r.N,
		R1:         r.R1,
		Rows:       r.Rows,
	}
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a ULID for a run created at t. IDs generated in one process
// sort in creation order.
func NewID(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// Prepare fills in a missing ID and creation time.
func Prepare(r Run, now time.Time) Run {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now.UTC()
	}
	if r.ID == "" {
		r.ID = NewID(r.CreatedAt)
	}
	return r
}
