/*
Package session owns per-user selection sessions and group edit sessions.

The Manager serializes every read-modify-write for a user behind a per-user
lock (reference counted so idle users cost nothing), optionally backed by a
DistributedLocker when several replicas share one SessionStore. The idle
sweeper takes the same lock per entry, so an eviction can never interleave
with an in-flight action for that user.
*/
package session
