/*
Package observability turns lifecycle events into Prometheus metrics and
structured log lines.

Metrics owns its own registry so several assistants (or tests) can coexist
in one process. Hooks returns domain.LifecycleHooks ready to pass to the
assistant; Merge combines it with caller-provided hooks.
*/
package observability
