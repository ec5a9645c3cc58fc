package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cognicore/colloc/internal/logging"
	"github.com/cognicore/colloc/pkg/colloc"
	"github.com/cognicore/colloc/pkg/colloc/config"
	"github.com/cognicore/colloc/pkg/colloc/ingest"
	"github.com/cognicore/colloc/pkg/colloc/internalerr"
	"github.com/cognicore/colloc/pkg/colloc/pmi"
	"github.com/cognicore/colloc/pkg/colloc/report"
	"github.com/cognicore/colloc/pkg/colloc/store"
	"github.com/cognicore/colloc/pkg/colloc/store/sqlite"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatal(err)
	}
}

type mode int

const (
	modeRun mode = iota
	modeList
	modeShow
)

type invocation struct {
	settings config.Settings
	mode     mode
	showID   string
}

func parseArgs(args []string, stderr io.Writer) (invocation, error) {
	fs := flag.NewFlagSet("collocate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	d := config.Defaults()
	var (
		configPath = fs.String("config", "", "YAML run file (optional)")
		envFile    = fs.String("env", ".env", "Dotenv file with COLLOC_* overrides")
		corpusDir  = fs.String("corpus", d.CorpusDir, "Directory of .txt/.html/.jsonl corpus files")
		outDir     = fs.String("out", d.OutDir, "Output directory")
		keyword    = fs.String("keyword", "", "Keyword to find collocates for (required)")
		window     = fs.Int("window", d.WindowSize, "Window size in tokens on each side")
		policy     = fs.String("policy", d.WindowPolicy, "Window policy: reference or symmetric")
		logBase    = fs.Float64("log-base", d.LogBase, "Logarithm base for MI")
		workers    = fs.Int("workers", d.Workers, "Concurrent collocate workers")
		minFreq    = fs.Int64("min-freq", d.MinFreq, "Drop collocates with lower raw frequency")
		limit      = fs.Int("limit", d.Limit, "Keep only the top N collocates (0 = all)")
		format     = fs.String("format", d.Format, "Output format: csv or json")
		stopPath   = fs.String("stoplist", "", "YAML stoplist removed before counting")
		exclPath   = fs.String("exclude", "", "YAML list of collocates dropped from the report")
		dbPath     = fs.String("db", "", "SQLite database for run history (optional)")
		logLevel   = fs.String("log-level", d.LogLevel, "Log level: debug, info or error")
		list       = fs.Bool("list", false, "List stored runs (requires --db)")
		show       = fs.String("show", "", "Print a stored run by ID (requires --db)")
	)
	if err := fs.Parse(args); err != nil {
		return invocation{}, err
	}

	s := config.Defaults()
	if *configPath != "" {
		loaded, err := config.LoadSettings(*configPath)
		if err != nil {
			return invocation{}, fmt.Errorf("load config: %w", err)
		}
		s = loaded
	}
	config.ApplyEnv(&s, *envFile)

	// explicit flags win over file and environment
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "corpus":
			s.CorpusDir = *corpusDir
		case "out":
			s.OutDir = *outDir
		case "keyword":
			s.Keyword = *keyword
		case "window":
			s.WindowSize = *window
		case "policy":
			s.WindowPolicy = *policy
		case "log-base":
			s.LogBase = *logBase
		case "workers":
			s.Workers = *workers
		case "min-freq":
			s.MinFreq = *minFreq
		case "limit":
			s.Limit = *limit
		case "format":
			s.Format = *format
		case "stoplist":
			s.Stoplist = *stopPath
		case "exclude":
			s.Exclude = *exclPath
		case "db":
			s.DB = *dbPath
		case "log-level":
			s.LogLevel = *logLevel
		}
	})

	inv := invocation{settings: s}
	switch {
	case *list && *show != "":
		return invocation{}, errors.New("--list and --show are mutually exclusive")
	case *list:
		inv.mode = modeList
	case *show != "":
		inv.mode = modeShow
		inv.showID = *show
	}
	if inv.mode != modeRun && s.DB == "" {
		return invocation{}, errors.New("--db required for --list and --show")
	}
	return inv, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	inv, err := parseArgs(args, os.Stderr)
	if err != nil {
		return err
	}
	logger := logging.New(inv.settings.LogLevel)

	var st store.Store
	if inv.settings.DB != "" {
		st, err = sqlite.OpenSQLite(ctx, inv.settings.DB)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer st.Close()
	}

	switch inv.mode {
	case modeList:
		return listRuns(ctx, st, inv.settings, stdout)
	case modeShow:
		return showRun(ctx, st, inv.showID, inv.settings.Format, stdout)
	}

	path, id, err := collocate(ctx, inv.settings, logger, st)
	if err != nil {
		return err
	}
	if id != "" {
		fmt.Fprintf(stdout, "%s (run %s)\n", path, id)
	} else {
		fmt.Fprintln(stdout, path)
	}
	return nil
}

// collocate runs one keyword query end to end and returns the output path
// and, when st is not nil, the stored run ID.
func collocate(ctx context.Context, s config.Settings, logger *logging.Logger, st store.Store) (string, string, error) {
	if err := s.Validate(); err != nil {
		return "", "", err
	}

	components, err := config.NewLoader(s).Load()
	if err != nil {
		return "", "", fmt.Errorf("load configs: %w", err)
	}

	keyword, err := normalizeKeyword(components.Tokenizer, s.Keyword)
	if err != nil {
		return "", "", err
	}
	s.Keyword = keyword

	corpus, err := ingest.NewLoader(components.Tokenizer, logger).LoadDir(s.CorpusDir)
	if err != nil {
		return "", "", fmt.Errorf("load corpus: %w", err)
	}

	engine, err := colloc.New(colloc.Options{
		Policy:  pmi.WindowPolicy(s.WindowPolicy),
		PMI:     pmi.Config{LogBase: s.LogBase},
		Workers: s.Workers,
		Logger:  logger,
	})
	if err != nil {
		return "", "", err
	}

	start := time.Now()
	rep, err := engine.Report(corpus.Tokens, s.Keyword, s.WindowSize)
	if err != nil {
		return "", "", fmt.Errorf("collocation report: %w", err)
	}
	if len(rep.Rows) == 0 {
		logger.Info("keyword %q does not occur in %s", s.Keyword, s.CorpusDir)
	}

	total := len(rep.Rows)
	rep.Rows = report.Filter{
		MinFreq: s.MinFreq,
		Limit:   s.Limit,
	}.Apply(components.Exclude.Filter(rep.Rows))
	logger.Info("keyword %q: %d collocates, %d kept (%s)", s.Keyword, total, len(rep.Rows), time.Since(start).Round(time.Millisecond))

	path, err := writeReport(s, rep)
	if err != nil {
		return "", "", err
	}
	logger.Info("wrote %s", path)

	if st == nil {
		return path, "", nil
	}
	id, err := st.SaveRun(ctx, store.FromReport(rep, s.CorpusDir))
	if err != nil {
		return "", "", fmt.Errorf("save run: %w", err)
	}
	logger.Debug("stored run %s", id)
	return path, id, nil
}

// normalizeKeyword runs the keyword through the corpus tokenizer so that it
// compares equal to corpus tokens. It must come out as exactly one token.
func normalizeKeyword(tok *ingest.Tokenizer, keyword string) (string, error) {
	tokens := tok.Tokenize(keyword)
	if len(tokens) != 1 {
		return "", fmt.Errorf("keyword %q is not a single corpus token (got %q): %w",
			keyword, tokens, internalerr.ErrInvalidConfig)
	}
	return tokens[0], nil
}

func writeReport(s config.Settings, rep report.Report) (string, error) {
	if err := os.MkdirAll(s.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(s.OutDir, report.FileName(s.Keyword, s.WindowSize, s.Format))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create output file: %w", err)
	}

	if err := encode(f, s.Format, rep); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

func encode(w io.Writer, format string, rep report.Report) error {
	if format == config.FormatJSON {
		return report.WriteJSON(w, rep)
	}
	return report.WriteCSV(w, rep)
}

func listRuns(ctx context.Context, st store.Store, s config.Settings, stdout io.Writer) error {
	runs, err := st.ListRuns(ctx, strings.ToLower(s.Keyword), s.Limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(stdout, "No runs found.")
		return nil
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tKEYWORD\tWINDOW\tPOLICY\tN\tCORPUS")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%d\t%s\n",
			r.ID, r.CreatedAt.Format(time.RFC3339), r.Keyword, r.WindowSize, r.Policy, r.N, r.CorpusDir)
	}
	return tw.Flush()
}

func showRun(ctx context.Context, st store.Store, id, format string, stdout io.Writer) error {
	r, err := st.GetRun(ctx, id)
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	return encode(stdout, format, r.Report())
}
