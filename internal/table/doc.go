// Package table is a small in-memory runtime whose value space mirrors the
// one of an embeddable scripting language: nil, booleans, integer and
// float numbers, byte strings, tables, functions, full userdata and light
// userdata.
//
// # Tables
//
// A Table is a single associative container. Integer keys 1..n make it a
// sequence, anything else makes it a map, and nothing stops it from being
// both. Keys are normalised on the way in: an integral float64 addresses
// the same entry as the equal int64, so t[2.0] and t[2] are one slot.
// Assigning nil removes an entry. Pair iteration follows insertion order,
// which keeps resolution and tests deterministic.
//
// # Access handlers
//
// A table may carry an access handler, the moral equivalent of an
// __index/__pairs metamethod. Iterators call it for every key they visit;
// a handler error stops the iteration and is reported through
// dyn.Iterator.Err, which is how runtime failures reach the resolver.
//
// # Concurrency
//
// Tables guard their storage with a sync.RWMutex so that the same document
// can be resolved from several goroutines at once. Iterators snapshot the
// key order when they start.
package table
