package ingestion

import (
	"strings"

	"github.com/fabfab/study-agent/models"
)

// PageBreak separates pages in extracted text.
const PageBreak = "\f"

// Chunk splits extracted text into one chunk per non-empty page. PageNumber
// keeps the page's split position, so blank pages leave gaps; ChunkIndex
// counts emitted chunks only.
func Chunk(raw string) []models.Chunk {
	chunks := make([]models.Chunk, 0)
	if raw == "" {
		return chunks
	}

	for idx, page := range strings.Split(raw, PageBreak) {
		text := strings.TrimSpace(page)
		if text == "" {
			continue
		}
		chunks = append(chunks, models.Chunk{
			Text:       text,
			PageNumber: idx + 1,
			ChunkIndex: len(chunks),
		})
	}

	return chunks
}
