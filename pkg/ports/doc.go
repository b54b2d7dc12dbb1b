/*
Package ports defines the driven ports (interfaces) of the rulecraft assistant.

These interfaces decouple the core logic from external implementations, allowing
the assistant to work with various storage backends, category sources and transports.

# Key Interfaces

  - SessionStore: Persists and loads per-user SelectionSession values.
  - GroupStore: Durably stores the category group table.
  - CategoryLister: Lists the canonical rule categories available upstream.
  - TextFetcher: Fetches raw text (node lists, rule bodies) from a remote location.
  - DistributedLocker: Provides distributed locking for concurrent session access across replicas.
  - Presenter: The user-facing action surface the assistant drives.
*/
package ports
