package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Columns is the header of a collocation table, in output order.
var Columns = []string{"collocate", "raw_frequency", "MI"}

// Row is one collocate of the keyword.
type Row struct {
	// Index is the position of the collocate in first-appearance order.
	Index        int
	Collocate    string
	RawFrequency int64
	MI           float64
}

// Report is a collocation table for one keyword over one corpus.
type Report struct {
	Keyword    string
	WindowSize int
	Policy     string
	N          int64
	R1         int64
	Rows       []Row
}

// Sort orders rows by descending MI. Ties keep their relative order and NaN
// sorts after every number.
func Sort(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].MI, rows[j].MI
		if math.IsNaN(a) {
			return false
		}
		if math.IsNaN(b) {
			return true
		}
		return a > b
	})
}

// IsSorted reports whether rows are in the order Sort produces.
func IsSorted(rows []Row) bool {
	for i := 1; i < len(rows); i++ {
		a, b := rows[i-1].MI, rows[i].MI
		if math.IsNaN(a) && !math.IsNaN(b) {
			return false
		}
		if !math.IsNaN(a) && !math.IsNaN(b) && a < b {
			return false
		}
	}
	return true
}

// Filter trims a sorted report.
type Filter struct {
	MinFreq int64             // drop rows with RawFrequency below this
	Limit   int               // keep at most this many rows; 0 keeps all
	Exclude func(string) bool // drop collocates for which this returns true
}

// Apply returns the rows that pass f, preserving order.
func (f Filter) Apply(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.RawFrequency < f.MinFreq {
			continue
		}
		if f.Exclude != nil && f.Exclude(r.Collocate) {
			continue
		}
		out = append(out, r)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out
}

// FileName is the conventional output name for a keyword/window pair,
// e.g. cat_collocates_ws_2.csv.
func FileName(keyword string, windowSize int, ext string) string {
	return fmt.Sprintf("%s_collocates_ws_%d.%s", keyword, windowSize, ext)
}

// FormatMI renders an MI value the way the CSV files spell it.
func FormatMI(mi float64) string {
	switch {
	case math.IsNaN(mi):
		return ""
	case math.IsInf(mi, 1):
		return "inf"
	case math.IsInf(mi, -1):
		return "-inf"
	}
	out := strconv.FormatFloat(mi, 'g', -1, 64)
	// float columns always carry a fraction or an exponent, e.g. 1.0
	if !strings.ContainsAny(out, ".e") {
		out += ".0"
	}
	return out
}

// WriteCSV writes the table with a leading unnamed index column holding each
// row's first-appearance position.
func WriteCSV(w io.Writer, rep Report) error {
	cw := csv.NewWriter(w)

	header := append([]string{""}, Columns...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rep.Rows {
		rec := []string{
			strconv.Itoa(r.Index),
			r.Collocate,
			strconv.FormatInt(r.RawFrequency, 10),
			FormatMI(r.MI),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

type jsonRow struct {
	Collocate    string   `json:"collocate"`
	RawFrequency int64    `json:"raw_frequency"`
	MI           *float64 `json:"MI"`
}

type jsonReport struct {
	Keyword    string    `json:"keyword"`
	WindowSize int       `json:"window_size"`
	Policy     string    `json:"window_policy"`
	N          int64     `json:"n"`
	R1         int64     `json:"r1"`
	Rows       []jsonRow `json:"rows"`
}

// WriteJSON writes the report as indented JSON. Non-finite MI values are null.
func WriteJSON(w io.Writer, rep Report) error {
	out := jsonReport{
		Keyword:    rep.Keyword,
		WindowSize: rep.WindowSize,
		Policy:     rep.Policy,
		N:          rep.N,
		R1:         rep.R1,
		Rows:       make([]jsonRow, 0, len(rep.Rows)),
	}
	for _, r := range rep.Rows {
		row := jsonRow{Collocate: r.Collocate, RawFrequency: r.RawFrequency}
		if !math.IsNaN(r.MI) && !math.IsInf(r.MI, 0) {
			mi := r.MI
			row.MI = &mi
		}
		out.Rows = append(out.Rows, row)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
