package pmi

// Collocates is the result of scanning a corpus for keyword windows.
type Collocates struct {
	// Words holds each distinct window token once, in order of first appearance.
	Words []string
	// R1 is the number of window slots over all occurrences, duplicates included.
	R1 int64
	// Occurrences is the number of keyword positions, i.e. windows generated.
	Occurrences int64
}

// Enumerate collects the collocates of keyword within windows of size w.
func Enumerate(tokens []string, keyword string, w int, policy WindowPolicy) Collocates {
	var out Collocates
	seen := make(map[string]struct{})

	add := func(ctx []string) {
		for _, tok := range ctx {
			out.R1++
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			out.Words = append(out.Words, tok)
		}
	}

	forEachWindow(tokens, keyword, w, policy, func(left, right []string) {
		out.Occurrences++
		add(left)
		add(right)
	})
	return out
}

// RawFrequency counts how often word occurs anywhere in tokens.
func RawFrequency(tokens []string, word string) int64 {
	var n int64
	for _, tok := range tokens {
		if tok == word {
			n++
		}
	}
	return n
}

// JointCount returns O11: how many times collocate appears inside the
// keyword windows. A collocate seen twice in one window counts twice.
func JointCount(tokens []string, keyword, collocate string, w int, policy WindowPolicy) int64 {
	var o11 int64
	forEachWindow(tokens, keyword, w, policy, func(left, right []string) {
		o11 += RawFrequency(left, collocate)
		o11 += RawFrequency(right, collocate)
	})
	return o11
}

// JointCounts computes JointCount for every collocate in a single pass.
func JointCounts(tokens []string, keyword string, w int, policy WindowPolicy) map[string]int64 {
	joint := make(map[string]int64)
	forEachWindow(tokens, keyword, w, policy, func(left, right []string) {
		for _, tok := range left {
			joint[tok]++
		}
		for _, tok := range right {
			joint[tok]++
		}
	})
	return joint
}

// Counter is a frequency index over one token sequence.
// It is read-only after NewCounter returns.
type Counter struct {
	N  int64            // total number of tokens
	Nx map[string]int64 // corpus frequency per token
}

// NewCounter indexes the frequency of every token.
func NewCounter(tokens []string) *Counter {
	c := &Counter{
		N:  int64(len(tokens)),
		Nx: make(map[string]int64),
	}
	for _, t := range tokens {
		c.Nx[t]++
	}
	return c
}

// Count returns the corpus frequency of a token (0 if unseen)
func (c *Counter) Count(t string) int64 {
	return c.Nx[t]
}

// Total returns the number of tokens indexed
func (c *Counter) Total() int64 {
	return c.N
}

// UniqueTokens returns the vocabulary size
func (c *Counter) UniqueTokens() int {
	return len(c.Nx)
}
