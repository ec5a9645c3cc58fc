package stoplist

import (
	"sort"
	"strings"

	"github.com/cognicore/colloc/pkg/colloc/report"
)

// Manager holds collocates that should not appear in a report.
// Exclusion happens after scoring, so excluded words still count toward
// N and R1.
type Manager struct {
	stops map[string]struct{}
}

// NewManager creates a new stoplist manager
func NewManager(initialStops []string) *Manager {
	stops := make(map[string]struct{}, len(initialStops))
	for _, s := range initialStops {
		if s = normalize(s); s != "" {
			stops[s] = struct{}{}
		}
	}
	return &Manager{stops: stops}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsStop checks if a token is excluded
func (m *Manager) IsStop(token string) bool {
	if m == nil {
		return false
	}
	_, ok := m.stops[token]
	return ok
}

// Add adds a token to the stoplist
func (m *Manager) Add(token string) {
	if token = normalize(token); token != "" {
		m.stops[token] = struct{}{}
	}
}

// Remove removes a token from the stoplist
func (m *Manager) Remove(token string) {
	delete(m.stops, normalize(token))
}

// Len returns the number of excluded tokens
func (m *Manager) Len() int {
	if m == nil {
		return 0
	}
	return len(m.stops)
}

// All returns all excluded tokens in sorted order
func (m *Manager) All() []string {
	result := make([]string, 0, m.Len())
	if m == nil {
		return result
	}
	for s := range m.stops {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}

// Filter drops excluded collocates from rows, preserving order.
func (m *Manager) Filter(rows []report.Row) []report.Row {
	return report.Filter{Exclude: m.IsStop}.Apply(rows)
}
