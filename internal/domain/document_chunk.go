// File: internal/domain/document_chunk.go
package domain

import "time"

// DocumentChunk is indexed content used by the retrieval-augmented agent.
// Embedding is a JSON-encoded float vector; chunks ingested before an
// embedding model was configured carry an empty value until first retrieval.
type DocumentChunk struct {
	ID        uint   `gorm:"primarykey"`
	Slug      string `json:"slug" gorm:"size:120;index;not null"`
	Source    string `json:"source" gorm:"size:255;not null"`
	Content   string `json:"content" gorm:"type:text;not null"`
	Embedding string `json:"embedding" gorm:"type:jsonb"`
	CreatedAt time.Time
}
