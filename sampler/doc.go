// Package sampler implements rank-based prioritized sampling. Losses are sorted
// into a rank table, ranks are turned into a normalized probability table and its
// cumulative form, and example indices are drawn by binary search over the
// cumulative table.
package sampler
