// Package query runs queries on behalf of subscribers and keeps their view of
// the cache current.
//
// # Overview
//
// A Lifecycle is one subscription to one query signature. It moves through
// these network states:
//
//	Idle ──Subscribe──> Loading ──> Ready | Error
//	Ready ──Refetch──> Refetching ──> Ready | Error
//	Ready ──poll tick──> PollingRefetch ──> Ready | Error
//
// Subscribers read Snapshot or register with Observe. A snapshot always
// carries the last good cached data, so "refetching with stale data" and
// "first load with nothing to show" are told apart by HasData.
//
// # Manager
//
// Manager is the process-wide context object shared by all lifecycles: the
// remote client, a singleflight.Group keyed by signature, a count of
// in-flight fetches per signature and the registry of active lifecycles that
// mutation refetches are routed through.
//
// # Single-flight
//
// Every network read (subscribe, refetch, poll, Fetch) goes through
// Manager.do. Callers that arrive while a fetch for the same signature is
// outstanding wait for it and share the result; they never start a second
// remote call. Poll ticks go further and skip entirely when a fetch is in
// flight.
//
// # Polling
//
// StartPolling launches a ticker goroutine (see poller.go). Poll fetches use
// the subscription context, not the poller's, so StopPolling never aborts a
// fetch already running; that fetch still writes its result. A failed poll
// moves the state to Error and the schedule carries on.
//
// # Error Handling
//
// Fetch failures are *remote.Error values. They set the Error state and are
// returned from Subscribe and Refetch; cached data is never discarded. There
// is no automatic retry.
package query
