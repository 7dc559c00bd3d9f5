// Package jsonldb provides a generic, concurrent-safe, in-memory table that
// can be seeded from JSONL (JSON Lines) data.
//
// # Overview
//
// [Table] keeps rows in memory and hands out clones, so callers never share
// mutable state with the table. Tables are safe for concurrent use.
//
// # Concurrency: Pessimistic Locking
//
// [Table.Modify] holds the write lock for the entire read-modify-write
// operation. This guarantees success without retries.
//
// # File Format
//
// [ReadJSONL] reads one JSON object per line. Blank lines and lines starting
// with '#' are skipped. Nothing is ever written back.
package jsonldb
