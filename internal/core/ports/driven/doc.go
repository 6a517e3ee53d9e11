// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Crawler: Bounded traversal of institutional websites
//   - Embedder: Text to vector mapping
//   - VectorStore: Vector persistence and nearest-neighbour search
//   - IngestJobStore: Background ingestion job state
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Chat completion. Without it (or when it is unreachable),
//     answers are synthesised deterministically from retrieved contexts.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
