package config

import (
	"fmt"

	"github.com/cognicore/colloc/pkg/colloc/ingest"
	"github.com/cognicore/colloc/pkg/colloc/stoplist"
)

// Loader loads the word-list files of a run and constructs components
type Loader struct {
	StoplistPath string
	ExcludePath  string
}

// Components holds all loaded configuration components
type Components struct {
	Tokenizer *ingest.Tokenizer
	Exclude   *stoplist.Manager
}

// NewLoader points a Loader at the files named in s.
func NewLoader(s Settings) *Loader {
	return &Loader{StoplistPath: s.Stoplist, ExcludePath: s.Exclude}
}

// Load reads all configuration files and returns initialized components
func (l *Loader) Load() (*Components, error) {
	comp := &Components{}

	// Stopwords are removed before counting and change N
	if l.StoplistPath != "" {
		sl, err := LoadStoplist(l.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		comp.Tokenizer = ingest.NewTokenizer(sl.Terms)
	} else {
		comp.Tokenizer = ingest.NewTokenizer(nil)
	}

	// Excluded collocates are dropped from the report only
	if l.ExcludePath != "" {
		sl, err := LoadStoplist(l.ExcludePath)
		if err != nil {
			return nil, fmt.Errorf("load exclude list: %w", err)
		}
		comp.Exclude = stoplist.NewManager(sl.Terms)
	} else {
		comp.Exclude = stoplist.NewManager(nil)
	}

	return comp, nil
}
