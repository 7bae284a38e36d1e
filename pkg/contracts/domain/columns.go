package domain

// Column names shared by every stage. The canonical names and their order in
// CanonicalColumns are the contract consumed by all downstream reports.
const (
	ColFiscalYear    = "Fiscal Year"
	ColFiscalQuarter = "Fiscal Quarter"
	ColServiceLine   = "Service Line"
	ColService       = "Service"
	ColSubService    = "Sub Service"
	ColRouteMiles    = "Route Miles"
	ColTrainNumber   = "Train Number"
	ColStationCode   = "Arrival Station Code"
	ColStationName   = "Arrival Station Name"
	ColStation       = "Arrival Station"
	ColStationType   = "Station Type"
	ColCity          = "City"
	ColAddress01     = "Address 01"
	ColAddress02     = "Address 02"
	ColZIPCode       = "ZIP Code"
	ColState         = "State"
	ColDivision      = "Division"
	ColRegion        = "Region"
	ColCountry       = "Country"
	ColLatitude      = "Latitude"
	ColLongitude     = "Longitude"
	ColTotalDetrain  = "Total Detraining Customers"
	ColLateDetrain   = "Late Detraining Customers"
	ColLateRatio     = "Late to Total Detraining Customers Ratio"
	ColAvgMinLate    = "Late Detraining Customers Avg Min Late"

	// Legacy average-minutes-late variants found in the raw extracts.
	ColAvgMinLateCS = "Avg Min Late (Lt CS)"
	ColAvgMinLateC  = "Avg Min Late (Lt C)"

	// Derived by the analytics and network packages.
	ColTrainArrivals       = "Train Arrivals"
	ColArrivalsRatio       = "Train Arrivals Ratio"
	ColDetrainingRatio     = "Detraining Ratio"
	ColStationOrder        = "Station Order"
	ColYearQuarter         = "Fiscal Year Quarter"
	ColColor               = "Color"
	ColPredictedAvgMinLate = "Predicted Avg Min Late"
	ColOnTimeDetrain       = "On Time Detraining Customers"
	ColStationCount        = "Station Count"
	ColRows                = "Rows"
	ColArrivalStatus       = "Arrival Status"
	ColPassengers          = "Passengers"
)

// RawColumns is the column set every raw performance extract must carry.
// ColAvgMinLateC is absent from older extracts and is filled as missing.
var RawColumns = []string{
	ColFiscalYear,
	ColFiscalQuarter,
	ColServiceLine,
	ColService,
	ColSubService,
	ColTrainNumber,
	ColStationCode,
	ColStationName,
	ColTotalDetrain,
	ColLateDetrain,
	ColAvgMinLateCS,
	ColAvgMinLateC,
}

// CleanColumns is the layout written by the clean stage.
var CleanColumns = []string{
	ColFiscalYear,
	ColFiscalQuarter,
	ColServiceLine,
	ColService,
	ColSubService,
	ColTrainNumber,
	ColStationCode,
	ColStation,
	ColState,
	ColDivision,
	ColRegion,
	ColCountry,
	ColTotalDetrain,
	ColLateDetrain,
	ColAvgMinLate,
}

// CanonicalColumns is the layout of the analysis-ready table.
var CanonicalColumns = []string{
	ColFiscalYear,
	ColFiscalQuarter,
	ColServiceLine,
	ColService,
	ColSubService,
	ColRouteMiles,
	ColTrainNumber,
	ColStationCode,
	ColStation,
	ColStationType,
	ColCity,
	ColAddress01,
	ColAddress02,
	ColZIPCode,
	ColState,
	ColDivision,
	ColRegion,
	ColCountry,
	ColLatitude,
	ColLongitude,
	ColTotalDetrain,
	ColLateDetrain,
	ColLateRatio,
	ColAvgMinLate,
}

// StationColumns is the layout of the normalized station master.
var StationColumns = []string{
	ColStationCode,
	ColStationType,
	ColCity,
	ColAddress01,
	ColAddress02,
	ColZIPCode,
	ColLatitude,
	ColLongitude,
}
