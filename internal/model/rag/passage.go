package rag

// Metadata carries the source information attached to a retrieved passage.
// Backends may send additional fields; only the URL is consumed here.
type Metadata struct {
	URL string `json:"url"`
}

// Passage is a retrieved context snippet, ordered by descending relevance as
// reported by the retrieval backend. Passages live for a single request and
// are never mutated or persisted.
type Passage struct {
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
}
