// Package duplicates finds pages that appear more than once across a set of
// comic archives and removes them in batch.
//
// A scan runs in four steps. Collector fingerprints every page of each
// writable archive into a Table. Table.DistinctHashes lists the fingerprints
// shared by two or more pages. The caller reviews each group and approves
// it into a Plan, which keeps one index per archive per group. RemovePages
// then rebuilds each archive in the plan once, dropping all of its queued
// pages, and resynchronizes the stored page list.
//
// WithinHamming is a separate, approximate helper for matching one cover
// fingerprint against candidates; it plays no part in exact grouping.
package duplicates
