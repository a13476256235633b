// Package analytics turns raw pharmacy records into the figures shown on the
// dashboard: per-entity statistics, time-bucketed sales series, the report
// snapshot and its headline KPIs.
//
// Every function here is a pure pass over the slices it is given. Nothing
// reads the wall clock: callers pass "now" explicitly, usually from a Clock.
// Ratios over a zero denominator yield 0, and non-finite inputs are treated
// as 0, so results can be rendered directly.
package analytics
