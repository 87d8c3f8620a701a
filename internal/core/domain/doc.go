// Package domain defines the metadata entities administered by restgate.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Service: A REST endpoint root bound to a host and context root
//   - AuthApp: An authentication application owned by a service
//   - ContentSet: Static files served below a service
//   - AuthVendor: A supported authentication mechanism
//   - ID: The binary identity shared by all rows
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
