package dataprocessing

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	apperrors "amtkcli/internal/errors"
	"amtkcli/internal/frame"
	"amtkcli/pkg/contracts/domain"
)

var validate = validator.New()

// Records converts a canonical frame into performance records.
func Records(f *frame.Frame) ([]domain.PerformanceRecord, error) {
	if _, err := Project(f, domain.CanonicalColumns); err != nil {
		return nil, err
	}
	out := make([]domain.PerformanceRecord, f.Len())
	for i := range out {
		r := f.Row(i)
		out[i] = domain.PerformanceRecord{
			FiscalYear:    rowInt(r, domain.ColFiscalYear),
			FiscalQuarter: rowInt(r, domain.ColFiscalQuarter),
			ServiceLine:   rowStr(r, domain.ColServiceLine),
			Service:       rowStr(r, domain.ColService),
			SubService:    rowStr(r, domain.ColSubService),
			RouteMiles:    rowInt(r, domain.ColRouteMiles),
			TrainNumber:   rowInt(r, domain.ColTrainNumber),
			StationCode:   rowStr(r, domain.ColStationCode),
			Station:       rowStr(r, domain.ColStation),
			State:         rowStr(r, domain.ColState),
			Country:       rowStr(r, domain.ColCountry),
			Latitude:      rowFloat(r, domain.ColLatitude),
			Longitude:     rowFloat(r, domain.ColLongitude),
			TotalDetrain:  rowInt(r, domain.ColTotalDetrain),
			LateDetrain:   rowInt(r, domain.ColLateDetrain),
			LateRatio:     rowFloat(r, domain.ColLateRatio),
			AvgMinLate:    rowFloat(r, domain.ColAvgMinLate),
		}
	}
	return out, nil
}

// ValidateRecords checks every canonical row against the record rules:
// quarter in 1..4, non-negative counts, late never above total, coordinates
// in range. The first failing row is reported.
func ValidateRecords(f *frame.Frame) error {
	records, err := Records(f)
	if err != nil {
		return err
	}
	for i, rec := range records {
		if err := validate.Struct(rec); err != nil {
			return apperrors.NewValidationError(fmt.Sprintf("row %d (train %d, station %s) is invalid",
				i, rec.TrainNumber, rec.StationCode), err).
				WithContext("row", i)
		}
	}
	return nil
}

func rowInt(r frame.Row, col string) int {
	v, _ := r.Int(col)
	return int(v)
}

func rowStr(r frame.Row, col string) string {
	v, _ := r.Str(col)
	return v
}

func rowFloat(r frame.Row, col string) *float64 {
	v, ok := r.Float(col)
	if !ok {
		return nil
	}
	return &v
}
