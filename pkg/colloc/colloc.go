package colloc

import (
	"fmt"
	"sync"

	"github.com/cognicore/colloc/internal/logging"
	"github.com/cognicore/colloc/pkg/colloc/internalerr"
	"github.com/cognicore/colloc/pkg/colloc/pmi"
	"github.com/cognicore/colloc/pkg/colloc/report"
)

// Engine computes keyword collocation tables over a token sequence
type Engine struct {
	policy  pmi.WindowPolicy
	calc    *pmi.Calculator
	workers int
	log     *logging.Logger
}

// Options configures an Engine
type Options struct {
	// Policy selects the window shape; empty means pmi.PolicyReference.
	Policy pmi.WindowPolicy
	// PMI controls the MI computation; the zero value uses base 2.
	PMI pmi.Config
	// Workers > 1 counts collocates concurrently. Output is identical.
	Workers int
	// Logger is optional.
	Logger *logging.Logger
}

// New creates an Engine with the given options. An unknown window policy
// is rejected with internalerr.ErrInvalidConfig.
func New(opts Options) (*Engine, error) {
	policy, err := pmi.ParsePolicy(string(opts.Policy))
	if err != nil {
		return nil, err
	}
	return &Engine{
		policy:  policy,
		calc:    pmi.NewCalculatorFromConfig(opts.PMI),
		workers: opts.Workers,
		log:     opts.Logger,
	}, nil
}

// Policy returns the window policy in use
func (e *Engine) Policy() pmi.WindowPolicy {
	return e.policy
}

// Report finds every collocate of keyword within windows of size w and
// scores it by mutual information. Rows come back sorted by descending MI,
// ties in first-appearance order. A keyword that never occurs yields a
// report without rows.
func (e *Engine) Report(tokens []string, keyword string, w int) (report.Report, error) {
	switch {
	case len(tokens) == 0:
		return report.Report{}, fmt.Errorf("empty corpus: %w", internalerr.ErrInvalidInput)
	case keyword == "":
		return report.Report{}, fmt.Errorf("empty keyword: %w", internalerr.ErrInvalidInput)
	case w < 1:
		return report.Report{}, fmt.Errorf("window size %d: %w", w, internalerr.ErrInvalidInput)
	}

	colls := pmi.Enumerate(tokens, keyword, w, e.policy)
	rep := report.Report{
		Keyword:    keyword,
		WindowSize: w,
		Policy:     string(e.policy),
		N:          int64(len(tokens)),
		R1:         colls.R1,
		Rows:       []report.Row{},
	}
	e.log.Debug("keyword %q: %d occurrences, R1=%d, N=%d, %d collocates",
		keyword, colls.Occurrences, colls.R1, rep.N, len(colls.Words))

	if len(colls.Words) == 0 {
		return rep, nil
	}

	var (
		rows []report.Row
		err  error
	)
	if e.workers > 1 {
		rows, err = e.scoreParallel(tokens, keyword, w, colls, rep.N)
	} else {
		rows, err = e.score(tokens, keyword, w, colls, rep.N)
	}
	if err != nil {
		return report.Report{}, err
	}

	report.Sort(rows)
	rep.Rows = rows
	return rep, nil
}

// score uses one frequency index and one window pass for all collocates.
func (e *Engine) score(tokens []string, keyword string, w int, colls pmi.Collocates, n int64) ([]report.Row, error) {
	counter := pmi.NewCounter(tokens)
	joint := pmi.JointCounts(tokens, keyword, w, e.policy)

	rows := make([]report.Row, len(colls.Words))
	for i, word := range colls.Words {
		row, err := e.row(i, word, counter.Count(word), joint[word], colls.R1, n)
		if err != nil {
			return nil, err
		}
		rows[i] = row
	}
	return rows, nil
}

// scoreParallel fans collocates out over e.workers goroutines. Each worker
// scans the shared, read-only token slice on its own.
func (e *Engine) scoreParallel(tokens []string, keyword string, w int, colls pmi.Collocates, n int64) ([]report.Row, error) {
	rows := make([]report.Row, len(colls.Words))
	errs := make([]error, len(colls.Words))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for k := 0; k < min(e.workers, len(colls.Words)); k++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				word := colls.Words[i]
				c1 := pmi.RawFrequency(tokens, word)
				o11 := pmi.JointCount(tokens, keyword, word, w, e.policy)
				rows[i], errs[i] = e.row(i, word, c1, o11, colls.R1, n)
			}
		}()
	}
	for i := range colls.Words {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func (e *Engine) row(i int, word string, c1, o11, r1, n int64) (report.Row, error) {
	mi, err := e.calc.MI(o11, c1, r1, n)
	if err != nil {
		return report.Row{}, fmt.Errorf("collocate %q: %w", word, err)
	}
	return report.Row{
		Index:        i,
		Collocate:    word,
		RawFrequency: c1,
		MI:           mi,
	}, nil
}
