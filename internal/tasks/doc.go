// Package tasks runs long-lived catalog jobs with real-time progress reporting.
//
// # Warm
//
// [WarmEngine.Run] pre-fetches catalog translations so later views resolve from the cache:
//
//  1. Loads every hymn from the [catalog.Store]
//  2. Plans one request per hymn, field and target language, skipping text that already
//     resolves without a remote call (English, stored translations, cache hits)
//  3. Fetches the rest through the [translation.Resolver] with a bounded worker pool,
//     paced by a token-bucket limiter so the AI gateway is not flooded
//
// Failed translations are counted and left uncached, so a later run retries them.
//
// # Progress Reporting
//
// # All operations use non-blocking channels for progress updates
//
// The [ProgressUpdate] struct contains phase, step counters and a message.
// Updates use select with default to prevent blocking.
package tasks
