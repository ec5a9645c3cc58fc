package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/cognicore/colloc/internal/jsonl"
	"github.com/cognicore/colloc/internal/logging"
	"github.com/cognicore/colloc/pkg/colloc/internalerr"
)

// Source describes one file that contributed to a corpus.
type Source struct {
	Path   string
	Tokens int
}

// Corpus is the concatenated token sequence of every file in a directory.
// Windows may cross file boundaries; Sources only records where each file's
// tokens came from.
type Corpus struct {
	Tokens  []string
	Sources []Source
}

// Len returns N, the corpus size in tokens.
func (c *Corpus) Len() int {
	return len(c.Tokens)
}

// FromTexts builds an in-memory corpus, one source per text.
func FromTexts(tok *Tokenizer, texts ...string) *Corpus {
	c := &Corpus{}
	for i, text := range texts {
		c.add(fmt.Sprintf("text-%d", i), tok.Tokenize(text))
	}
	return c
}

func (c *Corpus) add(path string, tokens []string) {
	c.Tokens = append(c.Tokens, tokens...)
	c.Sources = append(c.Sources, Source{Path: path, Tokens: len(tokens)})
}

// Extensions lists the file types LoadDir reads.
var Extensions = []string{".txt", ".html", ".htm", ".jsonl"}

// Loader reads corpus files from disk.
type Loader struct {
	tokenizer *Tokenizer
	log       *logging.Logger
}

// NewLoader creates a loader. A nil logger discards messages.
func NewLoader(tokenizer *Tokenizer, logger *logging.Logger) *Loader {
	if tokenizer == nil {
		tokenizer = NewTokenizer(nil)
	}
	return &Loader{tokenizer: tokenizer, log: logger}
}

// LoadDir tokenizes every supported file in dir, in lexical filename order,
// and concatenates the results.
func (l *Loader) LoadDir(dir string) (*Corpus, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read corpus dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !supported(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no corpus files in %s: %w", dir, internalerr.ErrNotFound)
	}
	sort.Strings(paths)

	corpus := &Corpus{}
	for _, p := range paths {
		tokens, err := l.LoadFile(p)
		if err != nil {
			return nil, err
		}
		corpus.add(p, tokens)
		l.log.Debug("loaded %s: %d tokens", p, len(tokens))
	}

	l.log.Info("loaded %d files, %d tokens from %s", len(corpus.Sources), corpus.Len(), dir)
	return corpus, nil
}

// LoadFile tokenizes a single corpus file according to its extension.
func (l *Loader) LoadFile(path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl":
		return l.loadJSONL(path)
	case ".html", ".htm":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()

		text, err := ExtractHTMLText(f)
		if err != nil {
			return nil, fmt.Errorf("parse html %s: %w", path, err)
		}
		return l.tokenizer.Tokenize(text), nil
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return l.tokenizer.Tokenize(string(data)), nil
	}
}

func (l *Loader) loadJSONL(path string) ([]string, error) {
	items, skipped, err := jsonl.Load(path)
	if err != nil {
		return nil, err
	}
	for _, s := range skipped {
		l.log.Error("skipping malformed JSON at line %d in %s: %v", s.Line, path, s.Err)
	}

	var tokens []string
	for _, item := range items {
		tokens = append(tokens, l.tokenizer.Tokenize(item.Body)...)
	}
	return tokens, nil
}

func supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ExtractHTMLText returns the text nodes of an HTML document separated by
// spaces. Script and style contents are skipped.
func ExtractHTMLText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				if buf.Len() > 0 {
					buf.WriteByte(' ')
				}
				buf.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return buf.String(), nil
}
