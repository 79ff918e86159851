package chat

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fabfab/study-agent/models"
)

const (
	maxChunksPerDocument = 3
	maxCitations         = 3
	contextExcerptRunes  = 300
	snippetRunes         = 150
	minLongTokenRunes    = 4
)

// Match selects chunks lexically related to query and formats them as prompt
// context plus citations. A chunk matches when its lower-cased text contains
// the first or second query token, or any token of four or more runes. At
// most three chunks per document are used, in chunk order, and at most three
// citations are returned overall. Results depend on document order.
func Match(query string, docs []models.Document) (string, []models.Citation) {
	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 || len(docs) == 0 {
		return "", nil
	}

	var excerpts strings.Builder
	var citations []models.Citation
	for _, doc := range docs {
		picked := 0
		for _, chunk := range doc.Chunks {
			if picked == maxChunksPerDocument {
				break
			}
			if !relevant(strings.ToLower(chunk.Text), tokens) {
				continue
			}
			picked++

			fmt.Fprintf(&excerpts, "Page %d: %s...\n\n", chunk.PageNumber, chunk.Preview(contextExcerptRunes))
			citations = append(citations, models.Citation{
				PageNumber: chunk.PageNumber,
				Snippet:    chunk.Preview(snippetRunes) + "...",
				DocumentID: doc.ID,
			})
		}
	}

	if len(citations) > maxCitations {
		citations = citations[:maxCitations]
	}
	return excerpts.String(), citations
}

func relevant(text string, tokens []string) bool {
	for i, token := range tokens {
		if i < 2 || utf8.RuneCountInString(token) >= minLongTokenRunes {
			if strings.Contains(text, token) {
				return true
			}
		}
	}
	return false
}

