// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage, which also persists
//     the current service
//   - Resolve: precedence of flags, RESTGATE_* variables and config.toml
package file
