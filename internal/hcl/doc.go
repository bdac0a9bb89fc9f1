// Package hcl is the HCL front end of dynresolve.
//
// It turns HCL source into values the resolver can consume and into the Go
// types the values are resolved against:
//
//   - ParseValue evaluates a single expression into a cty.Value.
//   - ParseAttributes and LoadFile evaluate every top-level attribute of an
//     HCL body, in source order.
//   - ParseType reads a type expression such as list(string) or
//     map(integer, bytes) and returns the reflect.Type it names.
//
// Expressions are evaluated without variables. A fixed set of functions from
// the go-cty standard library is available, together with try and can.
package hcl
