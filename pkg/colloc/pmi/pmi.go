package pmi

import (
	"fmt"
	"math"

	"github.com/cognicore/colloc/pkg/colloc/internalerr"
)

// Config controls the MI computation.
type Config struct {
	LogBase float64 `yaml:"log_base"`
}

// DefaultConfig returns base-2 logarithms, the convention of corpus
// linguistics collocation tables.
func DefaultConfig() Config {
	return Config{LogBase: 2}
}

// Calculator handles pointwise mutual information over a 2x2 contingency table
type Calculator struct {
	base float64
}

// NewCalculator creates a calculator using logarithms of the given base.
// A base that is not a positive number other than 1 falls back to 2.
func NewCalculator(base float64) *Calculator {
	if base <= 0 || base == 1 || math.IsNaN(base) || math.IsInf(base, 0) {
		base = 2
	}
	return &Calculator{base: base}
}

// NewCalculatorFromConfig creates a calculator from a Config
func NewCalculatorFromConfig(cfg Config) *Calculator {
	return NewCalculator(cfg.LogBase)
}

// Base returns the logarithm base in use
func (c *Calculator) Base() float64 {
	return c.base
}

// Expected returns E11 = R1 * C1 / N, the joint frequency expected if keyword
// and collocate were independent. Returns 0 when N is 0.
func (c *Calculator) Expected(c1, r1, n int64) float64 {
	if n == 0 {
		return 0
	}
	return float64(r1) * float64(c1) / float64(n)
}

// MI calculates the mutual information between keyword and collocate
//
// MI = log_b(O11 / E11),  E11 = R1 * C1 / N
//
// Where:
//   - O11 = joint frequency inside keyword windows
//   - C1 = corpus frequency of the collocate
//   - R1 = number of window slots over all keyword occurrences
//   - N = corpus size in tokens
//
// O11 = 0 yields -Inf. E11 = 0 is a domain error.
func (c *Calculator) MI(o11, c1, r1, n int64) (float64, error) {
	if o11 < 0 || c1 < 0 || r1 < 0 || n < 0 {
		return 0, fmt.Errorf("negative count (O11=%d C1=%d R1=%d N=%d): %w", o11, c1, r1, n, internalerr.ErrInvalidInput)
	}

	e11 := c.Expected(c1, r1, n)
	if e11 == 0 {
		return 0, fmt.Errorf("expected frequency is zero (C1=%d R1=%d N=%d): %w", c1, r1, n, internalerr.ErrDomain)
	}
	if o11 == 0 {
		return math.Inf(-1), nil
	}

	return c.log(float64(o11) / e11), nil
}

func (c *Calculator) log(x float64) float64 {
	switch c.base {
	case 2:
		return math.Log2(x)
	case 10:
		return math.Log10(x)
	case math.E:
		return math.Log(x)
	}
	return math.Log(x) / math.Log(c.base)
}
