// Package app contains the core application logic. It loads input documents,
// resolves their top-level entries against a requested type and renders the
// results, decoupled from any specific entrypoint like a CLI.
package app
