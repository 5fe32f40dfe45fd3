// Package retrieval provides semantic search over indexed notes and
// assembly of bounded context blocks for retrieval-augmented answering.
//
// The Engine type embeds a query and ranks indexed notes by vector
// similarity. BuildContext turns ranked results into a prompt-ready
// Context with per-note citations under a token budget, dropping whole
// notes rather than truncating them mid-entry.
package retrieval
