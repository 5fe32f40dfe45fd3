// Package reindex regenerates embeddings for every indexed note.
//
// Switching embedding models invalidates the whole vector collection,
// since vectors from different models are not comparable. The Reindexer
// walks all index entries, re-embeds each canonical document with the
// configured embedder, and upserts the result in place, with retries and
// progress reporting suitable for long-running maintenance runs.
package reindex
