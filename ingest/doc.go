// Package ingest provides pipeline orchestration for processing note
// attachments from a source connector into the vector index.
//
// The Pipeline type drives the per-attachment state machine recorded in
// the processing ledger: discovered, downloaded, transcribed, structured,
// indexed. Each pass resumes failed attachments from their last completed
// stage, reusing persisted transcripts and structured payloads so paid
// model calls are never repeated.
//
// Attachment bytes are prefetched concurrently using a worker pool; all
// ledger writes and model calls happen serially on the pass goroutine.
package ingest
