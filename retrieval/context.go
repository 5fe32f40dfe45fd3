package retrieval

import (
	"strings"

	"github.com/inkdex/inkdex/core"
)

// charsPerToken approximates the tokenizer without depending on one.
// Four characters per token is conservative for English prose.
const charsPerToken = 4

// Context is a prompt-ready block assembled from ranked search results,
// with one citation per note that made it into the text.
type Context struct {
	Text      string
	Citations []Citation
}

// Citation records where a context section came from and how well it
// matched the query.
type Citation struct {
	SourceID   string
	Similarity float32
}

// BuildContext assembles a context block from ranked search results, best
// match first, under a budget of maxTokens. Notes are included whole or
// not at all: assembly stops at the first note that would overflow the
// budget, so a truncated note never misleads the answering model.
func BuildContext(results []*core.SearchResult, maxTokens int) *Context {
	out := &Context{}
	if maxTokens <= 0 || len(results) == 0 {
		return out
	}
	budget := maxTokens * charsPerToken

	var b strings.Builder
	for _, result := range results {
		section := formatEntry(result.Entry)
		cost := len(section)
		if b.Len() > 0 {
			cost += 2 // separating blank line
		}
		if b.Len()+cost > budget {
			break
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(section)
		out.Citations = append(out.Citations, Citation{
			SourceID:   result.Entry.Meta.SourceID,
			Similarity: result.Score,
		})
	}
	out.Text = b.String()
	return out
}

// formatEntry renders one indexed note as a context section. The document
// is the canonical text, which already carries title, summary, keywords,
// tasks, notes, and reminders in a stable order.
func formatEntry(entry *core.IndexEntry) string {
	var b strings.Builder
	b.WriteString("## ")
	if entry.Meta.Title != "" {
		b.WriteString(entry.Meta.Title)
	} else {
		b.WriteString(entry.Meta.SourceID)
	}
	if entry.Meta.Date != "" {
		b.WriteString(" (")
		b.WriteString(entry.Meta.Date)
		b.WriteString(")")
	}
	b.WriteString("\n")
	b.WriteString(entry.Document)
	return b.String()
}
