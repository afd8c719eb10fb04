// Package memory contains the Store contract used by the memory tool and two
// implementations: InMemoryStore for tests and single-process demos, and
// RedisStore for memories that outlive the process.
//
// Entries are grouped by namespace (typically a user or conversation id).
// Search is a case-insensitive substring match over entry content; swap in a
// semantic index behind the same interface for production retrieval.
package memory
