package analytics

import (
	"math"

	apperrors "amtkcli/internal/errors"
	"amtkcli/internal/frame"
	"amtkcli/pkg/contracts/domain"
)

// PredictionDecimals is the rounding applied to predicted minutes late.
const PredictionDecimals = 2

// Regression is an ordinary least squares fit y = Intercept + Slope*x.
type Regression struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RValue    float64 `json:"r_value"`
	StdErr    float64 `json:"std_err"`
	N         int     `json:"n"`
}

// Predict evaluates the fitted line at x.
func (r Regression) Predict(x float64) float64 {
	return r.Intercept + r.Slope*x
}

// LinearRegression fits y on x. Pairs where either value is NaN are
// skipped. At least two pairs with distinct x are required.
func LinearRegression(x, y []float64) (Regression, error) {
	if len(x) != len(y) {
		return Regression{}, apperrors.NewValidationError("regression inputs differ in length", nil)
	}
	var xs, ys []float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	n := len(xs)
	if n < 2 {
		return Regression{}, apperrors.NewValidationError("regression needs at least two observations", nil)
	}

	meanX, meanY := calculateMean(xs), calculateMean(ys)
	var sxx, syy, sxy float64
	for i := range xs {
		dx, dy := xs[i]-meanX, ys[i]-meanY
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}
	if sxx == 0 {
		return Regression{}, apperrors.NewValidationError("regression x values are all equal", nil)
	}

	reg := Regression{N: n}
	reg.Slope = sxy / sxx
	reg.Intercept = meanY - reg.Slope*meanX
	if syy > 0 {
		reg.RValue = sxy / math.Sqrt(sxx*syy)
	}
	if n > 2 {
		residual := max(0, (1-reg.RValue*reg.RValue)*syy)
		reg.StdErr = math.Sqrt(residual / float64(n-2) / sxx)
	}
	return reg, nil
}

// RegressFrame fits yCol on xCol over the rows where both are present.
func RegressFrame(f *frame.Frame, xCol, yCol string) (Regression, error) {
	xs, err := f.Require(xCol)
	if err != nil {
		return Regression{}, err
	}
	ys, err := f.Require(yCol)
	if err != nil {
		return Regression{}, err
	}
	var x, y []float64
	for i := 0; i < f.Len(); i++ {
		xv, xok := xs.Float(i)
		yv, yok := ys.Float(i)
		if xok && yok {
			x = append(x, xv)
			y = append(y, yv)
		}
	}
	return LinearRegression(x, y)
}

// PredictionTable predicts minutes late every step miles from 0 to
// maxMiles, with the zero-mile prediction fixed at 0, and for every distinct
// sub-service and route-miles pair in f. Predictions are rounded to two
// decimals. Rows are ordered by route miles ascending, then sub-service
// descending with the grid rows last.
func PredictionTable(f *frame.Frame, reg Regression, maxMiles, step int) (*frame.Frame, error) {
	if step <= 0 || maxMiles < 0 {
		return nil, apperrors.NewValidationError("prediction grid needs a positive step and non-negative maximum", nil)
	}
	var miles []int64
	var preds, subs []any
	for m := 0; m <= maxMiles; m += step {
		p := 0.0
		if m > 0 {
			p = round(reg.Predict(float64(m)), PredictionDecimals)
		}
		miles = append(miles, int64(m))
		preds = append(preds, p)
		subs = append(subs, nil)
	}

	subCol, err := f.Require(domain.ColSubService)
	if err != nil {
		return nil, err
	}
	milesCol, err := f.Require(domain.ColRouteMiles)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for i := 0; i < f.Len(); i++ {
		sub, sok := subCol.Str(i)
		m, mok := milesCol.Int(i)
		if !sok || !mok {
			continue
		}
		key := sub + "\x1f" + frame.KeyString(m)
		if seen[key] {
			continue
		}
		seen[key] = true
		miles = append(miles, m)
		preds = append(preds, round(reg.Predict(float64(m)), PredictionDecimals))
		subs = append(subs, sub)
	}

	table, err := frame.New(
		frame.Ints(domain.ColRouteMiles, miles...),
		&frame.Series{Name: domain.ColPredictedAvgMinLate, Kind: frame.Float, Values: preds},
		&frame.Series{Name: domain.ColSubService, Kind: frame.String, Values: subs},
	)
	if err != nil {
		return nil, err
	}
	return table.SortStable(func(a, b frame.Row) bool {
		if c := frame.Compare(a.Get(domain.ColRouteMiles), b.Get(domain.ColRouteMiles)); c != 0 {
			return c < 0
		}
		return lessMissingLast(a.Get(domain.ColSubService), b.Get(domain.ColSubService), false)
	}), nil
}
