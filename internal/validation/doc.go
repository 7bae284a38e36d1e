// Package validation holds the input checks the commands run before
// reading any table.
package validation
