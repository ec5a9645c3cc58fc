package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/colloc/pkg/colloc/internalerr"
	"github.com/cognicore/colloc/pkg/colloc/pmi"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSettings(t *testing.T) {
	path := writeFile(t, t.TempDir(), "run.yaml", `
corpus_dir: novels
keyword: whale
window_size: 5
window_policy: symmetric
limit: 50
format: json
`)

	s, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, "novels", s.CorpusDir)
	assert.Equal(t, "whale", s.Keyword)
	assert.Equal(t, 5, s.WindowSize)
	assert.Equal(t, 50, s.Limit)
	assert.Equal(t, FormatJSON, s.Format)

	// untouched keys keep their defaults
	assert.Equal(t, "output", s.OutDir)
	assert.Equal(t, 2.0, s.LogBase)
	assert.Equal(t, "info", s.LogLevel)

	policy, err := s.Policy()
	require.NoError(t, err)
	assert.Equal(t, pmi.PolicySymmetric, policy)
	assert.NoError(t, s.Validate())
}

func TestParseSettingsEmpty(t *testing.T) {
	s, err := ParseSettings(nil)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), s)
}

func TestParseSettingsUnknownKey(t *testing.T) {
	_, err := ParseSettings([]byte("keywrod: cat\n"))
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
}

func TestLoadSettingsMissingFile(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	valid := Defaults()
	valid.Keyword = "cat"
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"missing keyword", func(s *Settings) { s.Keyword = "  " }},
		{"zero window", func(s *Settings) { s.WindowSize = 0 }},
		{"bad policy", func(s *Settings) { s.WindowPolicy = "wide" }},
		{"log base one", func(s *Settings) { s.LogBase = 1 }},
		{"negative log base", func(s *Settings) { s.LogBase = -2 }},
		{"NaN log base", func(s *Settings) { s.LogBase = math.NaN() }},
		{"infinite log base", func(s *Settings) { s.LogBase = math.Inf(1) }},
		{"negative infinite log base", func(s *Settings) { s.LogBase = math.Inf(-1) }},
		{"negative workers", func(s *Settings) { s.Workers = -1 }},
		{"negative min freq", func(s *Settings) { s.MinFreq = -1 }},
		{"negative limit", func(s *Settings) { s.Limit = -1 }},
		{"bad format", func(s *Settings) { s.Format = "xlsx" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), internalerr.ErrInvalidConfig)
		})
	}
}

func TestLoadStoplist(t *testing.T) {
	path := writeFile(t, t.TempDir(), "stoplist.yaml", "terms:\n  - the\n  - of\n")

	sl, err := LoadStoplist(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"the", "of"}, sl.Terms)
}

func TestLoadStoplistInvalid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "stoplist.yaml", "terms: [unclosed\n")

	_, err := LoadStoplist(path)
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
}
