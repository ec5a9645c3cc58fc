package pmi

import (
	"fmt"
	"strings"

	"github.com/cognicore/colloc/pkg/colloc/internalerr"
)

// WindowPolicy decides how far a keyword window reaches to the right.
type WindowPolicy string

const (
	// PolicyReference takes w tokens to the left and w-1 to the right of the
	// keyword. Output matches the historical collocation CSV files.
	PolicyReference WindowPolicy = "reference"

	// PolicySymmetric takes w tokens on both sides of the keyword.
	PolicySymmetric WindowPolicy = "symmetric"
)

// ParsePolicy maps a config value onto a WindowPolicy.
// The empty string selects PolicyReference.
func ParsePolicy(s string) (WindowPolicy, error) {
	switch WindowPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyReference:
		return PolicyReference, nil
	case PolicySymmetric:
		return PolicySymmetric, nil
	default:
		return "", fmt.Errorf("window policy %q: %w", s, internalerr.ErrInvalidConfig)
	}
}

// bounds returns the slice bounds of the window around position i in a
// sequence of n tokens: left context is [lo, i), right context is [i+1, hi).
// Both sides clamp at the sequence edges.
func (p WindowPolicy) bounds(n, i, w int) (lo, hi int) {
	lo = max(i-w, 0)
	if lo > i {
		lo = i
	}

	hi = i + w
	if p == PolicySymmetric {
		hi++
	}
	hi = min(hi, n)
	if hi < i+1 {
		hi = i + 1
	}
	return lo, hi
}

// Window returns the context tokens around tokens[i]. The token at i is
// never part of its own window.
func Window(tokens []string, i, w int, policy WindowPolicy) []string {
	if i < 0 || i >= len(tokens) {
		return nil
	}
	lo, hi := policy.bounds(len(tokens), i, w)
	out := make([]string, 0, (i-lo)+(hi-i-1))
	out = append(out, tokens[lo:i]...)
	out = append(out, tokens[i+1:hi]...)
	return out
}

// forEachWindow calls fn with the left and right context of every keyword
// occurrence, in corpus order. The slices alias tokens and must not be kept.
func forEachWindow(tokens []string, keyword string, w int, policy WindowPolicy, fn func(left, right []string)) {
	for i, tok := range tokens {
		if tok != keyword {
			continue
		}
		lo, hi := policy.bounds(len(tokens), i, w)
		fn(tokens[lo:i], tokens[i+1:hi])
	}
}
