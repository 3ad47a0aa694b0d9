// Package mutation sends mutations and keeps the query cache in step with
// them once the server has confirmed each one.
//
// A call site picks its cache policy by what its SuccessFunc returns:
//
//   - CachePatch: rewrite the cached list locally (fast, no round trip)
//   - RefetchRequest: re-run the active queries (slower, always correct)
//   - nil: leave the cache alone
//
// Nothing is written before the server answers, and a failed mutation never
// touches the cache.
package mutation
