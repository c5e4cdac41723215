// Package repositories implements SQLite persistence for the hymn catalog and per-user state.
//
// Key Implementations:
//   - [HymnRepository] : catalog store satisfying catalog.Store, seeded idempotently from the built-in catalog
//   - [KVRepository] : durable key/value store holding liked sets and the login session
//   - [MemoryKV] : in-process key/value store for guests and tests
//
// Titles and lyrics are stored one row per language in hymn_texts so new languages need no schema change.
// The [NextSequence] function increments per-table sequence counters to keep insertion order stable.
package repositories
