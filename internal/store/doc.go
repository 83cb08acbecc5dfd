// Package store keeps the quads that plans are evaluated against in SQLite.
//
// # Layout
//
//   - quads: one row per (dataset, graph, subject, predicate, object). The
//     default graph is stored as ''; quads added without a dataset name
//     belong to the unnamed dataset ''.
//   - loads: the dataset files loaded so far with their content hash, so
//     reloading an unchanged file is a no-op.
//
// A single database may hold several datasets. Evaluation reads one of
// them through Dataset(name), never their union.
//
// Terms are stored as their canonical SSE text (ir.CanonicalTerm), so
// equality in SQL is term equality after NFC normalization.
//
// # Determinism
//
// Every read orders by insertion sequence (seq), so identical load order
// gives identical match order.
//
// # Connection
//
// WAL journal, synchronous=NORMAL, a 5s busy timeout and a single pooled
// connection, which also keeps ":memory:" databases alive for the life of
// the Store.
package store
