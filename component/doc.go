// Package component defines the core interfaces for lifecycle-managed
// infrastructure services in fixturekit.
//
// Components represent services that require initialization, startup,
// shutdown, and health monitoring. A Registry starts them in registration
// order and stops them in reverse.
//
// # Interfaces
//
//   - Component: Core lifecycle interface (Start/Stop/Health)
//   - Describable: Startup summary descriptions
package component
