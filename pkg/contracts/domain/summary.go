package domain

import "fmt"

// AggFunc names an aggregate computed over a metric column.
type AggFunc string

const (
	AggSum    AggFunc = "sum"
	AggMean   AggFunc = "mean"
	AggMedian AggFunc = "median"
	AggMin    AggFunc = "min"
	AggMax    AggFunc = "max"
	AggStd    AggFunc = "std"
	AggCount  AggFunc = "count"
)

// AggregateColumn names the output column for metric and fn.
func AggregateColumn(metric string, fn AggFunc) string {
	return fmt.Sprintf("%s %s", metric, fn)
}

// GroupKey is one component of a group's key tuple.
type GroupKey struct {
	Column string `json:"column"`
	Value  any    `json:"value"`
}

// Aggregate is one "{metric} {func}" value. Value is nil when the group has
// no non-missing observations for the metric.
type Aggregate struct {
	Column string   `json:"column"`
	Value  *float64 `json:"value"`
}

// SummaryStatRow is one group produced by the aggregation engine.
type SummaryStatRow struct {
	Keys            []GroupKey  `json:"keys"`
	TrainArrivals   int         `json:"train_arrivals"`
	Aggregates      []Aggregate `json:"aggregates"`
	ArrivalsRatio   *float64    `json:"arrivals_ratio,omitempty"`
	DetrainingRatio *float64    `json:"detraining_ratio,omitempty"`
	DetrainingSum   float64     `json:"detraining_sum"`
}

// Key returns the group's value for column.
func (r SummaryStatRow) Key(column string) (any, bool) {
	for _, k := range r.Keys {
		if k.Column == column {
			return k.Value, true
		}
	}
	return nil, false
}

// Value returns the aggregate stored under column.
func (r SummaryStatRow) Value(column string) (*float64, bool) {
	for _, a := range r.Aggregates {
		if a.Column == column {
			return a.Value, true
		}
	}
	return nil, false
}

// BinRow is one occupied histogram bin.
type BinRow struct {
	Center float64 `json:"bin_center" csv:"bin_center"`
	Start  float64 `json:"bin_start" csv:"bin_start"`
	End    float64 `json:"bin_end" csv:"bin_end"`
	Count  int     `json:"count" csv:"count"`
}

// NumericDescription groups descriptive statistics of one numeric column.
type NumericDescription struct {
	Count    int           `json:"count"`
	Center   CenterStats   `json:"center"`
	Spread   SpreadStats   `json:"spread"`
	Position PositionStats `json:"position"`
}

// CenterStats are measures of central tendency.
type CenterStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Mode   float64 `json:"mode"`
}

// SpreadStats are measures of dispersion.
type SpreadStats struct {
	Std      float64 `json:"std"`
	Variance float64 `json:"variance"`
	Range    float64 `json:"range"`
	IQR      float64 `json:"iqr"`
}

// PositionStats are order statistics.
type PositionStats struct {
	Min float64 `json:"min"`
	Q1  float64 `json:"q1"`
	Q2  float64 `json:"q2"`
	Q3  float64 `json:"q3"`
	Max float64 `json:"max"`
}

// BoxSummary is the pre-aggregated form of a box plot for one group.
type BoxSummary struct {
	Keys       []GroupKey `json:"keys"`
	Count      int        `json:"count"`
	Q1         float64    `json:"q1"`
	Median     float64    `json:"median"`
	Q3         float64    `json:"q3"`
	LowerWhisk float64    `json:"lower_whisker"`
	UpperWhisk float64    `json:"upper_whisker"`
	Outliers   []float64  `json:"outliers,omitempty"`
}
