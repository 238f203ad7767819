/*
Package ports defines the driven ports (interfaces) for the squeezer engine.

These interfaces decouple the rewriting core from external implementations,
allowing documents to be read from and written to various storage backends and
coordinated across replicas.

# Key Interfaces

  - DocumentStore: Responsible for persisting and loading documents.
  - DistributedLocker: Provides distributed locking so a document is never transformed twice concurrently.
  - Transformer: The engine as seen by adapters (HTTP, corpus runner).
*/
package ports
