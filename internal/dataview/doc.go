// Package dataview turns a caller-owned list of items into the flattened,
// positionally addressable rows a grid displays.
//
// # Pipeline
//
// Every refresh runs the same stages:
//
//	items ──► filter ──► page ──► group ──► finalize ──► flatten ──► diff
//	                                         (titles,      (group,
//	                                          totals)       rows, totals)
//
// The diff compares the new rows with the previous ones and the view then
// announces, in order, a paging change, a row count change and the list of
// changed rows. A grid bound with Bind invalidates and re-renders exactly
// those rows.
//
// # Batching
//
// Mutations normally refresh immediately. Wrap bursts of changes in
// BeginUpdate/EndUpdate to refresh once, or configure a scheduler with
// WithRefreshDelay so refreshes are coalesced into a single deferred run.
//
// # Filtering
//
// RefreshHints tell the view how a filter changed since the last refresh.
// A narrowing filter only re-tests the previously matching items, an
// expanding filter only re-tests the previously rejected ones, and an
// unchanged filter skips filtering altogether.
//
// # Grouping
//
// Grouping is configured with one GroupingInfo per level. Groups are keyed by
// their grouping key (parent key, delimiter, value) so collapse state
// survives refreshes. Totals rows are computed by aggregators, optionally
// lazily on first access.
//
// A DataView is not safe for concurrent use.
package dataview
