// Package cache holds the last known result of each query a cardwatch process
// has run.
//
// # Overview
//
// Store is keyed by Signature (operation name plus canonically encoded
// variables) and holds one Entry per key. Entries are created by the first
// Write or Update and only removed by an explicit Invalidate.
//
// # Concurrency Model
//
// Store uses a readers-writer lock:
//
//   - Read: read lock, returns a copy
//   - Write: write lock, copies the data in
//   - Update: read-copy, run fn unlocked, then commit under the write lock only
//     if the entry version has not moved; otherwise rerun fn on the fresh data
//
// Commits are applied in the order callers reach the write lock, so results
// land in the order their remote calls completed. Nobody outside the package
// ever holds a reference into a stored slice.
//
// # Watchers
//
// Watch lets a query lifecycle learn about commits it did not make itself,
// such as a mutation patching the list it displays. Watchers run on the
// committing goroutine after the lock is released.
package cache
