// Package dyn defines the narrow contract between the resolution engine and
// an embedded dynamic-language runtime.
//
// The engine never inspects runtime values directly. Everything it needs is
// expressed by the Runtime interface:
//
//   - Classify: total, constant-time categorisation of a value
//   - Sequence: ordered iteration over the contiguous 1-based integer keys
//   - Pairs: unordered iteration over every key/value pair
//   - RawBytes: the byte content of a string-like value
//   - Retain: a stable Handle that outlives the current call
//   - Scalar: the host payload of booleans, numbers and opaque references
//
// Concrete runtimes live in sibling packages (table, ctyrt).
package dyn
