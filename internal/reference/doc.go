// Package reference loads the datasets the pipeline joins against: the
// sub-service route list, the state/province to country map, the census
// region and division tree, the NTAD station master and the versioned
// station override set. Every loader validates what it reads and reports
// duplicate keys as schema violations so joins downstream stay one-to-one.
package reference
