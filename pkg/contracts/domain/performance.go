package domain

// PerformanceRecord is one train arrival at one station for a fiscal quarter.
// Geographic fields are nullable because the station master does not cover
// every code in the performance extracts.
type PerformanceRecord struct {
	FiscalYear    int      `json:"fiscal_year" csv:"Fiscal Year" validate:"required,gte=1900"`
	FiscalQuarter int      `json:"fiscal_quarter" csv:"Fiscal Quarter" validate:"required,min=1,max=4"`
	ServiceLine   string   `json:"service_line" csv:"Service Line" validate:"required"`
	Service       string   `json:"service" csv:"Service" validate:"required"`
	SubService    string   `json:"sub_service" csv:"Sub Service" validate:"required"`
	RouteMiles    int      `json:"route_miles" csv:"Route Miles" validate:"gte=0"`
	TrainNumber   int      `json:"train_number" csv:"Train Number" validate:"gte=0"`
	StationCode   string   `json:"station_code" csv:"Arrival Station Code" validate:"required"`
	Station       string   `json:"station,omitempty" csv:"Arrival Station"`
	State         string   `json:"state,omitempty" csv:"State"`
	Country       string   `json:"country,omitempty" csv:"Country"`
	Latitude      *float64 `json:"latitude,omitempty" csv:"Latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude     *float64 `json:"longitude,omitempty" csv:"Longitude" validate:"omitempty,gte=-180,lte=180"`
	TotalDetrain  int      `json:"total_detraining" csv:"Total Detraining Customers" validate:"gte=0"`
	LateDetrain   int      `json:"late_detraining" csv:"Late Detraining Customers" validate:"gte=0,ltefield=TotalDetrain"`
	LateRatio     *float64 `json:"late_ratio,omitempty" csv:"Late to Total Detraining Customers Ratio" validate:"omitempty,gte=0,lte=1"`
	AvgMinLate    *float64 `json:"avg_min_late,omitempty" csv:"Late Detraining Customers Avg Min Late" validate:"omitempty,gte=0"`
}

// OnTimeDetrain returns the customers that detrained on time.
func (r PerformanceRecord) OnTimeDetrain() int {
	return r.TotalDetrain - r.LateDetrain
}

// RatioPolicy decides how the late-to-total ratio treats arrivals with no
// late customers.
type RatioPolicy string

const (
	// RatioPolicyNullOnZeroLate leaves the ratio missing when no late
	// customers were recorded.
	RatioPolicyNullOnZeroLate RatioPolicy = "null_on_zero_late"
	// RatioPolicyZeroOnZeroLate emits 0 when late is zero and total is positive.
	RatioPolicyZeroOnZeroLate RatioPolicy = "zero_on_zero_late"
)

// CoverageRow counts raw rows per reporting period.
type CoverageRow struct {
	FiscalYear    int    `json:"fiscal_year"`
	FiscalQuarter int    `json:"fiscal_quarter"`
	ServiceLine   string `json:"service_line,omitempty"`
	Rows          int    `json:"rows"`
}
