package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("COLLOC_KEYWORD", "whale")
	t.Setenv("COLLOC_WINDOW_SIZE", "7")
	t.Setenv("COLLOC_LOG_BASE", "10")
	t.Setenv("COLLOC_MIN_FREQ", "3")
	t.Setenv("COLLOC_WINDOW_POLICY", "symmetric")

	s := Defaults()
	ApplyEnv(&s, "testdata-does-not-exist.env")

	assert.Equal(t, "whale", s.Keyword)
	assert.Equal(t, 7, s.WindowSize)
	assert.Equal(t, 10.0, s.LogBase)
	assert.EqualValues(t, 3, s.MinFreq)
	assert.Equal(t, "symmetric", s.WindowPolicy)
	assert.Equal(t, "output", s.OutDir)
}

func TestApplyEnvIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("COLLOC_WINDOW_SIZE", "wide")

	s := Defaults()
	ApplyEnv(&s, "testdata-does-not-exist.env")

	assert.Equal(t, 2, s.WindowSize)
}

func TestApplyEnvReadsDotEnvFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), ".env", "COLLOC_OUT_DIR=results\nCOLLOC_FORMAT=json\n")
	// godotenv never overrides a variable that exists, even if empty; register
	// cleanup with Setenv, then unset so the file values apply
	for _, key := range []string{"COLLOC_OUT_DIR", "COLLOC_FORMAT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	s := Defaults()
	ApplyEnv(&s, path)

	assert.Equal(t, "results", s.OutDir)
	assert.Equal(t, FormatJSON, s.Format)
}
