// Package resolve converts values owned by an embedded dynamic runtime into
// values of a requested Go type.
//
// # The problem
//
// A runtime value is often ambiguous from the host's point of view. A
// string-like value may become text, a byte slice or a Blob. A table may be
// an ordered sequence or an arbitrary map, and its keys may themselves be
// tables. The resolver picks one interpretation per structural position and
// applies it to every element of that position: a sequence never mixes text
// and bytes, and a map never mixes key representations. When no
// interpretation fits, nothing is returned.
//
// # How it works
//
// The requested type is seen through a Target, which answers one question:
// would a trial container holding exactly this sample be accepted? For each
// runtime value the resolver enumerates candidate representations
// (Constraint) in a fixed priority order, materialises them lazily, and
// probes. The first accepted candidate pins the constraint for the rest of
// the sequence or map.
//
// Priority order highlights:
//
//   - Text before ByteSequence before BinaryBlob for string-likes
//   - keyed before ordered for tables, so non-sequential keys are never
//     silently dropped by an erased target
//   - erased (any / Hashable) representations first, but only for slots
//     that are themselves erased
//
// # Results
//
// Resolve returns (value, ok, err). ok == false with a nil error is a soft
// mismatch: the data does not fit the type. A non-nil error is a hard
// failure raised by the runtime itself (an iteration handler failing, an
// unknown value), by a cyclic table, or by exceeding Config.MaxDepth.
//
// A Resolver is safe for concurrent use. Every call owns its trial
// containers and constraint slots.
package resolve
