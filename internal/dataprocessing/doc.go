// Package dataprocessing turns raw station performance extracts into the
// canonical analysis table.
//
// # Stages
//
// The package provides the pure transforms behind the three pipeline stages:
//
//	Combine: ParseWorkbook per extract, align to RawColumns, Resolve sentinels, sort
//	Clean:   Normalize, merge legacy averages, split station names, resolve geography
//	Augment: Enrich with route miles, station master, overrides and the late ratio
//
// Every transform takes a *frame.Frame and returns a new one; inputs are
// never modified. Joins preserve the left row count and order.
//
// # Usage
//
//	raw, err := dataprocessing.ParseWorkbook("FY24 Station Performance.xlsx", logger)
//	if err != nil {
//	    return err
//	}
//	combined, report, err := dataprocessing.Combine([]*frame.Frame{raw}, []string{"--"})
//
// # Error Handling
//
// Missing columns, non-unique join keys and values that cannot be coerced
// are reported as schema violations from amtkcli/internal/errors, carrying
// the offending column in their context.
package dataprocessing
