// Package analytics computes the descriptive statistics behind the station
// performance reports: grouped summaries with arrival and detraining
// ratios, histogram binning, box plot pre-aggregation, busiest-station
// rankings and the route-miles regression.
//
// Aggregates ignore missing values. A group with no observations for a
// metric yields a missing aggregate rather than zero, except count.
package analytics
