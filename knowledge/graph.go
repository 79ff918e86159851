// Package knowledge mirrors ingested documents into a Neo4j graph so that
// documents sharing keywords can be found.
package knowledge

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type Document struct {
	ID       string
	Title    string
	Chunks   []Chunk
	Keywords []string
}

type Chunk struct {
	Index      int
	PageNumber int
	Text       string
}

// Related is a document that shares keywords with another one.
type Related struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	SharedKeywords []string `json:"sharedKeywords"`
}

type Graph struct {
	driver neo4j.DriverWithContext
}

func NewGraph(driver neo4j.DriverWithContext) *Graph {
	return &Graph{driver: driver}
}

// SyncDocument replaces the chunk and keyword links of doc.
func (g *Graph) SyncDocument(ctx context.Context, doc Document) error {
	if g.driver == nil {
		return fmt.Errorf("neo4j driver is nil")
	}

	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, `
			MERGE (d:Document {id: $id})
			SET d.title = $title,
			    d.updated_at = datetime()
		`, map[string]any{"id": doc.ID, "title": doc.Title}); err != nil {
			return nil, fmt.Errorf("upsert document node: %w", err)
		}

		if _, err := tx.Run(ctx, `
			MATCH (d:Document {id: $id})-[:HAS_CHUNK]->(c:Chunk)
			DETACH DELETE c
		`, map[string]any{"id": doc.ID}); err != nil {
			return nil, fmt.Errorf("clear existing chunk nodes: %w", err)
		}

		if _, err := tx.Run(ctx, `
			MATCH (d:Document {id: $id})-[r:MENTIONS]->(:Keyword)
			DELETE r
		`, map[string]any{"id": doc.ID}); err != nil {
			return nil, fmt.Errorf("clear existing keywords: %w", err)
		}

		for _, chunk := range doc.Chunks {
			if _, err := tx.Run(ctx, `
				MATCH (d:Document {id: $doc_id})
				CREATE (c:Chunk {doc_id: $doc_id, index: $chunk_index, page: $page, text: $text})
				MERGE (d)-[:HAS_CHUNK {order: $chunk_index}]->(c)
			`, map[string]any{
				"doc_id":      doc.ID,
				"chunk_index": chunk.Index,
				"page":        chunk.PageNumber,
				"text":        chunk.Text,
			}); err != nil {
				return nil, fmt.Errorf("upsert chunk node: %w", err)
			}
		}

		for _, keyword := range doc.Keywords {
			if keyword == "" {
				continue
			}
			if _, err := tx.Run(ctx, `
				MATCH (d:Document {id: $doc_id})
				MERGE (k:Keyword {name: $name})
				MERGE (d)-[:MENTIONS]->(k)
			`, map[string]any{"doc_id": doc.ID, "name": keyword}); err != nil {
				return nil, fmt.Errorf("upsert keyword: %w", err)
			}
		}

		return nil, nil
	})
	if err != nil {
		return err
	}

	if _, err := session.Run(ctx, `
		MATCH (k:Keyword)
		WHERE NOT (k)<-[:MENTIONS]-(:Document)
		DELETE k
	`, nil); err != nil {
		return fmt.Errorf("remove orphan keywords: %w", err)
	}
	return nil
}

// RelatedDocuments lists documents sharing keywords with id, most shared
// keywords first.
func (g *Graph) RelatedDocuments(ctx context.Context, id string, limit int) ([]Related, error) {
	if g.driver == nil {
		return nil, fmt.Errorf("neo4j driver is nil")
	}
	if limit <= 0 {
		limit = 5
	}

	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (d:Document {id: $id})-[:MENTIONS]->(k:Keyword)<-[:MENTIONS]-(other:Document)
		WHERE other.id <> d.id
		WITH other, collect(DISTINCT k.name) AS shared
		RETURN other.id AS id, other.title AS title, shared
		ORDER BY size(shared) DESC, title
		LIMIT $limit
	`, map[string]any{"id": id, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("run related documents query: %w", err)
	}

	related := make([]Related, 0)
	for result.Next(ctx) {
		record := result.Record()
		idVal, _ := record.Get("id")
		titleVal, _ := record.Get("title")
		sharedVal, _ := record.Get("shared")

		docID, ok := idVal.(string)
		if !ok {
			continue
		}
		title, _ := titleVal.(string)
		related = append(related, Related{
			ID:             docID,
			Title:          title,
			SharedKeywords: convertStringSlice(sharedVal),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("related documents result error: %w", err)
	}

	return related, nil
}

// Purge removes every node this package manages.
func (g *Graph) Purge(ctx context.Context) error {
	if g.driver == nil {
		return fmt.Errorf("neo4j driver is nil")
	}

	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	for _, label := range []string{"Chunk", "Keyword", "Document"} {
		if _, err := session.Run(ctx, fmt.Sprintf("MATCH (n:%s) DETACH DELETE n", label), nil); err != nil {
			return fmt.Errorf("purge %s nodes: %w", label, err)
		}
	}
	return nil
}

func (g *Graph) Close(ctx context.Context) error {
	if g.driver == nil {
		return nil
	}
	return g.driver.Close(ctx)
}

func convertStringSlice(value any) []string {
	raw, ok := value.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
