package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/colloc/pkg/colloc/internalerr"
	"github.com/cognicore/colloc/pkg/colloc/pmi"
)

// Output formats
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Settings describes one collocation run
type Settings struct {
	CorpusDir    string  `yaml:"corpus_dir"`
	OutDir       string  `yaml:"out_dir"`
	Keyword      string  `yaml:"keyword"`
	WindowSize   int     `yaml:"window_size"`
	WindowPolicy string  `yaml:"window_policy"`
	LogBase      float64 `yaml:"log_base"`
	Workers      int     `yaml:"workers"`
	MinFreq      int64   `yaml:"min_freq"`
	Limit        int     `yaml:"limit"`
	Format       string  `yaml:"format"`
	Stoplist     string  `yaml:"stoplist"`
	Exclude      string  `yaml:"exclude"`
	DB           string  `yaml:"db"`
	LogLevel     string  `yaml:"log_level"`
}

// Defaults returns the settings used when nothing else is given.
func Defaults() Settings {
	return Settings{
		CorpusDir:    "data/100_english_novels/corpus",
		OutDir:       "output",
		WindowSize:   2,
		WindowPolicy: string(pmi.PolicyReference),
		LogBase:      2,
		Workers:      1,
		Format:       FormatCSV,
		LogLevel:     "info",
	}
}

// LoadSettings reads a YAML run file on top of Defaults.
// Unknown keys are rejected.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}
	return ParseSettings(data)
}

// ParseSettings decodes YAML run settings on top of Defaults.
func ParseSettings(data []byte) (Settings, error) {
	s := Defaults()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	return s, nil
}

// Policy returns the parsed window policy
func (s Settings) Policy() (pmi.WindowPolicy, error) {
	return pmi.ParsePolicy(s.WindowPolicy)
}

// Validate checks the settings for a run
func (s Settings) Validate() error {
	var problems []string

	if strings.TrimSpace(s.Keyword) == "" {
		problems = append(problems, "keyword is required")
	}
	if s.WindowSize < 1 {
		problems = append(problems, fmt.Sprintf("window_size must be positive, got %d", s.WindowSize))
	}
	if _, err := s.Policy(); err != nil {
		problems = append(problems, fmt.Sprintf("unknown window_policy %q", s.WindowPolicy))
	}
	if math.IsNaN(s.LogBase) || math.IsInf(s.LogBase, 0) || s.LogBase <= 0 || s.LogBase == 1 {
		problems = append(problems, fmt.Sprintf("log_base must be finite, positive and not 1, got %v", s.LogBase))
	}
	if s.Workers < 0 {
		problems = append(problems, "workers must not be negative")
	}
	if s.MinFreq < 0 {
		problems = append(problems, "min_freq must not be negative")
	}
	if s.Limit < 0 {
		problems = append(problems, "limit must not be negative")
	}
	switch s.Format {
	case FormatCSV, FormatJSON:
	default:
		problems = append(problems, fmt.Sprintf("unknown format %q", s.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", internalerr.ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Stoplist represents a stopword or exclusion list file
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}

	return &sl, nil
}
