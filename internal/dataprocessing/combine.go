package dataprocessing

import (
	"sort"

	"amtkcli/internal/frame"
	"amtkcli/pkg/contracts/domain"
)

// combineOrder is the sort applied to the combined table. Fiscal periods run
// newest first; everything else ascends.
var combineOrder = []struct {
	column string
	desc   bool
}{
	{domain.ColFiscalYear, true},
	{domain.ColFiscalQuarter, true},
	{domain.ColServiceLine, false},
	{domain.ColService, false},
	{domain.ColSubService, false},
	{domain.ColTrainNumber, false},
	{domain.ColStationCode, false},
}

// Combine aligns raw extracts to RawColumns, stacks them, resolves sentinel
// tokens and numeric types, and sorts the result. Spreadsheet artefact
// columns are dropped and the optional legacy average column is added as
// missing where an extract lacks it.
func Combine(frames []*frame.Frame, tokens []string) (*frame.Frame, SentinelReport, error) {
	aligned := make([]*frame.Frame, 0, len(frames))
	for _, f := range frames {
		withLegacy, err := EnsureColumns(DropPrefixed(f, UnnamedPrefix), Schema{}, domain.ColAvgMinLateC)
		if err != nil {
			return nil, SentinelReport{}, err
		}
		projected, err := Project(withLegacy, domain.RawColumns)
		if err != nil {
			return nil, SentinelReport{}, err
		}
		aligned = append(aligned, projected)
	}
	if len(aligned) == 0 {
		aligned = append(aligned, frame.Empty(domain.RawColumns...))
	}

	stacked, err := frame.Concat(aligned...)
	if err != nil {
		return nil, SentinelReport{}, err
	}
	resolved, report, err := Resolve(stacked, RawSchema, tokens)
	if err != nil {
		return nil, report, err
	}
	return SortCombined(resolved), report, nil
}

// SortCombined orders rows newest fiscal period first, then by service line,
// service, sub-service, train number and station code.
func SortCombined(f *frame.Frame) *frame.Frame {
	return f.SortStable(func(a, b frame.Row) bool {
		for _, o := range combineOrder {
			c := frame.Compare(a.Get(o.column), b.Get(o.column))
			if c == 0 {
				continue
			}
			if o.desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// Coverage counts rows per fiscal year and quarter, and per service line when
// byServiceLine is set. Rows are ordered by count, largest first.
func Coverage(f *frame.Frame, byServiceLine bool) []domain.CoverageRow {
	type key struct {
		fy, fq int
		line   string
	}
	counts := make(map[key]int)
	var order []key
	for i := 0; i < f.Len(); i++ {
		r := f.Row(i)
		fy, _ := r.Int(domain.ColFiscalYear)
		fq, _ := r.Int(domain.ColFiscalQuarter)
		k := key{fy: int(fy), fq: int(fq)}
		if byServiceLine {
			k.line, _ = r.Str(domain.ColServiceLine)
		}
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}

	rows := make([]domain.CoverageRow, len(order))
	for i, k := range order {
		rows[i] = domain.CoverageRow{
			FiscalYear:    k.fy,
			FiscalQuarter: k.fq,
			ServiceLine:   k.line,
			Rows:          counts[k],
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Rows > rows[j].Rows })
	return rows
}

// CoverageFrame tabulates coverage rows for export.
func CoverageFrame(rows []domain.CoverageRow, byServiceLine bool) (*frame.Frame, error) {
	fy := make([]int64, len(rows))
	fq := make([]int64, len(rows))
	lines := make([]string, len(rows))
	n := make([]int64, len(rows))
	for i, r := range rows {
		fy[i] = int64(r.FiscalYear)
		fq[i] = int64(r.FiscalQuarter)
		lines[i] = r.ServiceLine
		n[i] = int64(r.Rows)
	}
	cols := []*frame.Series{
		frame.Ints(domain.ColFiscalYear, fy...),
		frame.Ints(domain.ColFiscalQuarter, fq...),
	}
	if byServiceLine {
		cols = append(cols, frame.Strings(domain.ColServiceLine, lines...))
	}
	cols = append(cols, frame.Ints(domain.ColRows, n...))
	return frame.New(cols...)
}
