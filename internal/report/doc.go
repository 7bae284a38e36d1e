// Package report assembles the descriptive tables produced from the
// canonical performance table and writes them as CSV files plus one
// workbook.
package report
