// Package ports defines the interfaces that connect the application layer to
// infrastructure adapters.
//
// # Port Interfaces
//
//   - [Host]: callback methods on the host application (message display,
//     text insertion, selection lookup)
//   - [Registrar]: command registration against the host endpoint
//   - [FeedFetcher]: single-attempt feed retrieval and validation
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// The application layer (internal/app) depends only on these interfaces.
// Adapters under internal/adapters implement them over XML-RPC and HTTP.
package ports
