/*
Package store implements the in-memory cache engine.

The store owns the entry table and wires together three collaborators: an
eviction strategy that decides victim order, a memory pressure monitor that
tracks byte usage against a ceiling, and an object pool that recycles entry
records under churn.

# Data Flow

A Set call estimates the new value's size, checks the item and byte budgets,
and asks the active strategy for victims while over budget:

	Set(key, value, ttl)
	    │
	    ├── sizeof.Estimator ── size estimate
	    │
	    ├── over budget? ── Strategy.SelectVictim ──► remove victim
	    │        ▲                                    (strategy + monitor
	    │        └──────────── repeat, capped ─────── notified together)
	    │
	    └── insert entry ──► Strategy.OnInsert, Monitor.RecordDelta

Eviction in a single call is capped at a configurable ratio of the table
(default 30%, raised to 50% under high memory pressure); past the cap the
call fails with CAPACITY_EXCEEDED instead of evicting unboundedly.

# Consistency

A single mutex guards the entry table, the strategy bookkeeping, and the
byte accounting. Every structural change updates the table and the active
strategy before the operation returns, so the two can never be observed out
of sync, and the sum of live entries' sizes always equals the monitor's
tracked usage. The periodic expiry sweep and the monitor's cleanup passes
take the same lock and therefore interleave only between operations.

Individual calls are atomic; read-modify-write sequences spanning multiple
calls are the caller's responsibility to serialize.

# Strategy swapping

SetEvictionStrategy rebuilds the new strategy's bookkeeping purely from the
live entries and their access metadata. Strategies never learn anything from
their predecessor's internal structures, which keeps the variants decoupled
and makes the rebuild order a store-side decision (insertion order for fifo,
access recency for everything else).
*/
package store
