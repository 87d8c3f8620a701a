// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Store: Transaction scope over the metadata schema (Tx and its per-entity stores)
//   - IDGenerator: Identities for new rows
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Prompter: Interactive input. Without it, every call behaves as scripted.
//   - CurrentServiceStore: Persisted current service. Without it, UseCurrent selectors are ignored.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
