package jsonl

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Item is one document line of a JSONL corpus file. Fields other than
// "text" are ignored, whatever their type.
type Item struct {
	Body string `json:"text"`
}

// LineError records a malformed line that was skipped.
type LineError struct {
	Line int
	Err  error
}

// Load reads items from a JSONL file. Malformed lines are skipped and
// reported in the returned slice of LineError.
func Load(path string) ([]Item, []LineError, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read file %s: %w", path, err)
	}

	var (
		items   []Item
		skipped []LineError
	)
	lines := strings.Split(string(data), "\n")

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var item Item
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			skipped = append(skipped, LineError{Line: i + 1, Err: err})
			continue
		}
		items = append(items, item)
	}

	return items, skipped, nil
}
