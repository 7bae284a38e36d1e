// Package network slices the canonical performance table by service
// hierarchy and orders a train's stops along its declared route.
package network
