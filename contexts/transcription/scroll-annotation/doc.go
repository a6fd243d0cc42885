// Package annotation implements the scroll-annotation service inside the
// transcription context: the scroll catalog with its images, transcribed
// regions, region voting with a denormalized certainty score, and the
// timestamp-cursor delta sync used by clients to converge.
//
// Layering:
// - domain: scroll, region and vote entities, region policy, certainty rules
// - application: commands/queries taking the caller principal explicitly
// - ports: persistence, vote ledger and image storage boundaries
// - adapters: HTTP, memory, postgres and local-disk image store
// - transport: module-private DTOs for HTTP contracts
//
// Concurrency notes:
// - A vote cast and the certainty recompute commit as one unit of work
//   serialized on the region row.
// - Region updatedAt is server-assigned and never moves backward.
package annotation
