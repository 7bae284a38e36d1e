package frame

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	apperrors "amtkcli/internal/errors"
)

// Kind is the storage type of a Series.
type Kind int

const (
	String Kind = iota
	Int
	Float
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) seriesType() series.Type {
	switch k {
	case Int:
		return series.Int
	case Float:
		return series.Float
	default:
		return series.String
	}
}

func kindOf(t series.Type) Kind {
	switch t {
	case series.Int:
		return Int
	case series.Float:
		return Float
	default:
		return String
	}
}

// Series is one named column. A nil element is a missing value; non-nil
// elements are string, int64 or float64 according to Kind.
type Series struct {
	Name   string
	Kind   Kind
	Values []any
}

// NewSeries creates a series of kind from values. Values are copied.
func NewSeries(name string, kind Kind, values []any) *Series {
	v := make([]any, len(values))
	copy(v, values)
	return &Series{Name: name, Kind: kind, Values: v}
}

// Strings builds a string series; empty strings become missing.
func Strings(name string, values ...string) *Series {
	v := make([]any, len(values))
	for i, s := range values {
		if s != "" {
			v[i] = s
		}
	}
	return &Series{Name: name, Kind: String, Values: v}
}

// Ints builds an int series.
func Ints(name string, values ...int64) *Series {
	v := make([]any, len(values))
	for i, n := range values {
		v[i] = n
	}
	return &Series{Name: name, Kind: Int, Values: v}
}

// Floats builds a float series; NaN becomes missing.
func Floats(name string, values ...float64) *Series {
	v := make([]any, len(values))
	for i, f := range values {
		if !math.IsNaN(f) {
			v[i] = f
		}
	}
	return &Series{Name: name, Kind: Float, Values: v}
}

// Missing builds a series of n missing values.
func Missing(name string, kind Kind, n int) *Series {
	return &Series{Name: name, Kind: kind, Values: make([]any, n)}
}

// Len returns the number of elements.
func (s *Series) Len() int { return len(s.Values) }

// IsNull reports whether element i is missing.
func (s *Series) IsNull(i int) bool { return s.Values[i] == nil }

// Str returns element i as a string.
func (s *Series) Str(i int) (string, bool) {
	switch v := s.Values[i].(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return fmt.Sprint(v), true
	}
}

// Float returns element i as a float64. Strings are not parsed.
func (s *Series) Float(i int) (float64, bool) {
	switch v := s.Values[i].(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

// Int returns element i as an int64. Floats are truncated.
func (s *Series) Int(i int) (int64, bool) {
	switch v := s.Values[i].(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// NonNullFloats returns the non-missing numeric values in order.
func (s *Series) NonNullFloats() []float64 {
	out := make([]float64, 0, len(s.Values))
	for i := range s.Values {
		if f, ok := s.Float(i); ok && !math.IsNaN(f) {
			out = append(out, f)
		}
	}
	return out
}

// NullCount returns the number of missing values.
func (s *Series) NullCount() int {
	n := 0
	for _, v := range s.Values {
		if v == nil {
			n++
		}
	}
	return n
}

// Unique returns the distinct non-missing values in first-seen order.
func (s *Series) Unique() []any {
	seen := make(map[string]bool)
	var out []any
	for i, v := range s.Values {
		if v == nil {
			continue
		}
		key, _ := s.Str(i)
		if !seen[key] {
			seen[key] = true
			out = append(out, v)
		}
	}
	return out
}

// toGota converts s into a gota series. Ints are narrowed to the int
// elements gota stores and string columns keep the KeyString form of
// numbers.
func (s *Series) toGota() series.Series {
	values := make([]interface{}, len(s.Values))
	for i, v := range s.Values {
		switch x := v.(type) {
		case nil:
		case int64:
			if s.Kind == String {
				values[i] = KeyString(x)
			} else {
				values[i] = int(x)
			}
		case float64:
			if s.Kind == String {
				values[i] = KeyString(x)
			} else {
				values[i] = x
			}
		default:
			values[i] = x
		}
	}
	return series.New(values, s.Kind.seriesType(), s.Name)
}

// missingElement reports whether e is missing. gota copies a missing string
// element as the text "NaN", so that text counts as missing too.
func missingElement(e series.Element) bool {
	if e.IsNA() {
		return true
	}
	return e.Type() == series.String && e.String() == "NaN"
}

func fromGota(s series.Series) *Series {
	kind := kindOf(s.Type())
	values := make([]any, s.Len())
	for i := range values {
		e := s.Elem(i)
		if missingElement(e) {
			continue
		}
		switch kind {
		case Int:
			if n, err := e.Int(); err == nil {
				values[i] = int64(n)
			}
		case Float:
			values[i] = e.Float()
		default:
			values[i] = e.String()
		}
	}
	return &Series{Name: s.Name, Kind: kind, Values: values}
}

// Frame is an ordered set of equal-length series held in a gota DataFrame.
// Frames are treated as immutable: every method returns a new Frame and
// never modifies the receiver.
type Frame struct {
	df    dataframe.DataFrame
	cols  []*Series
	index map[string]int
	rows  int
}

// blank is a frame with no columns and n rows.
func blank(n int) *Frame {
	return &Frame{index: map[string]int{}, rows: n}
}

// FromDataFrame wraps a gota DataFrame. A DataFrame carrying an error is
// reported as a SchemaViolation.
func FromDataFrame(df dataframe.DataFrame) (*Frame, error) {
	if df.Err != nil {
		return nil, apperrors.NewSchemaViolation("", fmt.Sprintf("frame operation failed: %v", df.Err))
	}
	names := df.Names()
	f := &Frame{df: df, index: make(map[string]int, len(names)), rows: df.Nrow()}
	for i, name := range names {
		f.index[name] = i
		f.cols = append(f.cols, fromGota(df.Col(name)))
	}
	return f, nil
}

// New builds a frame. Column names must be unique and lengths equal.
func New(cols ...*Series) (*Frame, error) {
	seen := make(map[string]bool, len(cols))
	for i, c := range cols {
		if seen[c.Name] {
			return nil, apperrors.NewSchemaViolation(c.Name, fmt.Sprintf("duplicate column %q", c.Name))
		}
		seen[c.Name] = true
		if i > 0 && c.Len() != cols[0].Len() {
			return nil, apperrors.NewSchemaViolation(c.Name,
				fmt.Sprintf("column %q has %d rows, expected %d", c.Name, c.Len(), cols[0].Len()))
		}
	}
	if len(cols) == 0 {
		return blank(0), nil
	}
	gs := make([]series.Series, len(cols))
	for i, c := range cols {
		gs[i] = c.toGota()
	}
	return FromDataFrame(dataframe.New(gs...))
}

// Empty returns a frame with the given string columns and no rows.
func Empty(names ...string) *Frame {
	cols := make([]*Series, len(names))
	for i, n := range names {
		cols[i] = Missing(n, String, 0)
	}
	f, err := New(cols...)
	if err != nil {
		return blank(0)
	}
	return f
}

// DataFrame returns the backing gota DataFrame. It is empty for a frame
// without columns.
func (f *Frame) DataFrame() dataframe.DataFrame { return f.df }

// Len returns the row count.
func (f *Frame) Len() int { return f.rows }

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.Name
	}
	return names
}

// Has reports whether the frame carries column name.
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Col returns the named column or nil. The returned series must not be
// modified.
func (f *Frame) Col(name string) *Series {
	i, ok := f.index[name]
	if !ok {
		return nil
	}
	return f.cols[i]
}

// Require returns the named column or a SchemaViolation.
func (f *Frame) Require(name string) (*Series, error) {
	s := f.Col(name)
	if s == nil {
		return nil, apperrors.NewSchemaViolation(name, fmt.Sprintf("required column %q is missing", name))
	}
	return s, nil
}

// Series returns the columns in order.
func (f *Frame) Series() []*Series {
	out := make([]*Series, len(f.cols))
	copy(out, f.cols)
	return out
}

// WithColumn replaces the column with the same name or appends s.
func (f *Frame) WithColumn(s *Series) (*Frame, error) {
	if len(f.cols) == 0 {
		return New(s)
	}
	if s.Len() != f.rows {
		return nil, apperrors.NewSchemaViolation(s.Name,
			fmt.Sprintf("column %q has %d rows, expected %d", s.Name, s.Len(), f.rows))
	}
	return FromDataFrame(f.df.Mutate(s.toGota()))
}

// Select returns the named columns in the given order.
func (f *Frame) Select(names ...string) (*Frame, error) {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if _, err := f.Require(n); err != nil {
			return nil, err
		}
		if seen[n] {
			return nil, apperrors.NewSchemaViolation(n, fmt.Sprintf("duplicate column %q", n))
		}
		seen[n] = true
	}
	if len(names) == 0 {
		return blank(0), nil
	}
	return FromDataFrame(f.df.Select(names))
}

// Drop removes the named columns. Unknown names are ignored.
func (f *Frame) Drop(names ...string) *Frame {
	var present []string
	for _, n := range names {
		if f.Has(n) {
			present = append(present, n)
		}
	}
	if len(present) == 0 {
		return f
	}
	if len(present) >= len(f.cols) {
		return blank(f.rows)
	}
	out, err := FromDataFrame(f.df.Drop(present))
	if err != nil {
		return blank(f.rows)
	}
	return out
}

// Rename renames columns using mapping old -> new.
func (f *Frame) Rename(mapping map[string]string) (*Frame, error) {
	gs := make([]series.Series, len(f.cols))
	seen := make(map[string]bool, len(f.cols))
	for i, c := range f.cols {
		s := f.df.Col(c.Name)
		if n, ok := mapping[c.Name]; ok {
			s.Name = n
		}
		if seen[s.Name] {
			return nil, apperrors.NewSchemaViolation(s.Name, fmt.Sprintf("duplicate column %q", s.Name))
		}
		seen[s.Name] = true
		gs[i] = s
	}
	if len(gs) == 0 {
		return blank(f.rows), nil
	}
	return FromDataFrame(dataframe.New(gs...))
}

// Take returns the rows at idx in that order.
func (f *Frame) Take(idx []int) *Frame {
	if len(f.cols) == 0 {
		return blank(len(idx))
	}
	out, err := FromDataFrame(f.df.Subset(idx))
	if err != nil {
		return blank(len(idx))
	}
	return out
}

// Filter keeps the rows for which keep returns true.
func (f *Frame) Filter(keep func(r Row) bool) *Frame {
	idx := make([]int, 0, f.rows)
	for i := 0; i < f.rows; i++ {
		if keep(Row{f: f, i: i}) {
			idx = append(idx, i)
		}
	}
	return f.Take(idx)
}

// Where keeps the rows whose column satisfies comparator against value,
// e.g. Where("Service Line", series.Eq, "Long Distance"). Missing cells
// never match.
func (f *Frame) Where(column string, comparator series.Comparator, value any) (*Frame, error) {
	if _, err := f.Require(column); err != nil {
		return nil, err
	}
	return FromDataFrame(f.df.Filter(dataframe.F{
		Colname:    column,
		Comparator: comparator,
		Comparando: comparand(value),
	}))
}

// NotNull keeps the rows where every named column has a value.
func (f *Frame) NotNull(columns ...string) (*Frame, error) {
	filters := make([]dataframe.F, len(columns))
	for i, c := range columns {
		if _, err := f.Require(c); err != nil {
			return nil, err
		}
		filters[i] = dataframe.F{
			Colname:    c,
			Comparator: series.CompFunc,
			Comparando: func(e series.Element) bool { return !missingElement(e) },
		}
	}
	if len(filters) == 0 {
		return f, nil
	}
	return FromDataFrame(f.df.FilterAggregation(dataframe.And, filters...))
}

// comparand narrows int64 values to the int elements gota compares.
func comparand(v any) any {
	switch x := v.(type) {
	case int64:
		return int(x)
	case []int64:
		out := make([]int, len(x))
		for i, n := range x {
			out[i] = int(n)
		}
		return out
	default:
		return v
	}
}

// Arrange sorts rows by one column. Ties keep their input order and missing
// values go last in both directions.
func (f *Frame) Arrange(column string, descending bool) (*Frame, error) {
	if _, err := f.Require(column); err != nil {
		return nil, err
	}
	if f.rows < 2 {
		return f, nil
	}
	order := dataframe.Sort(column)
	if descending {
		order = dataframe.RevSort(column)
	}
	return FromDataFrame(f.df.Arrange(order))
}

// SortStable orders rows with less, keeping the input order of ties. It
// serves multi-column orderings.
func (f *Frame) SortStable(less func(a, b Row) bool) *Frame {
	idx := make([]int, f.rows)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return less(Row{f: f, i: idx[i]}, Row{f: f, i: idx[j]})
	})
	return f.Take(idx)
}

// Row returns a view of row i.
func (f *Frame) Row(i int) Row { return Row{f: f, i: i} }

// Concat stacks frames vertically. All frames must have the same column set;
// the first frame's order and kinds win.
func Concat(frames ...*Frame) (*Frame, error) {
	if len(frames) == 0 {
		return blank(0), nil
	}
	first := frames[0]
	rows := 0
	for _, fr := range frames {
		if len(fr.cols) != len(first.cols) {
			return nil, apperrors.NewSchemaViolation("",
				fmt.Sprintf("cannot concatenate frames with %d and %d columns", len(first.cols), len(fr.cols)))
		}
		for _, name := range first.Columns() {
			if _, err := fr.Require(name); err != nil {
				return nil, err
			}
		}
		rows += fr.rows
	}
	if len(first.cols) == 0 {
		return blank(rows), nil
	}
	df := first.df
	for _, fr := range frames[1:] {
		df = df.RBind(fr.df)
	}
	return FromDataFrame(df)
}

// Row is a read-only view of one frame row.
type Row struct {
	f *Frame
	i int
}

// Index returns the row position in its frame.
func (r Row) Index() int { return r.i }

// Get returns the raw value of column name, nil when missing or absent.
func (r Row) Get(name string) any {
	s := r.f.Col(name)
	if s == nil {
		return nil
	}
	return s.Values[r.i]
}

// Str returns column name as a string.
func (r Row) Str(name string) (string, bool) {
	s := r.f.Col(name)
	if s == nil {
		return "", false
	}
	return s.Str(r.i)
}

// Float returns column name as a float64.
func (r Row) Float(name string) (float64, bool) {
	s := r.f.Col(name)
	if s == nil {
		return 0, false
	}
	return s.Float(r.i)
}

// Int returns column name as an int64.
func (r Row) Int(name string) (int64, bool) {
	s := r.f.Col(name)
	if s == nil {
		return 0, false
	}
	return s.Int(r.i)
}
