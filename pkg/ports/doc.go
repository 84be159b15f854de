/*
Package ports defines the driven ports (interfaces) for the Espalier engine.

These interfaces decouple the transition engine from external implementations,
allowing sessions to live in memory, Redis, or anything else that satisfies
the contracts.

# Key Interfaces

  - SessionStore: persists and loads per-user Session state.
  - DistributedLocker: coordinates session access across replicas.
  - Engine: the driving port adapters (HTTP, MCP, CLI) consume.
*/
package ports
