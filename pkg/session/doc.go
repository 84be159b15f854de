/*
Package session provides concurrency-safe access to per-user navigation
state.

The Manager guarantees at most one in-flight transition per session id using
reference-counted in-process locks, optionally combined with a distributed
locker when several engine replicas share one store. Operations on different
session ids proceed in parallel.
*/
package session
