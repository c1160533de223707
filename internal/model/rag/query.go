package rag

// QueryRequest is the inbound payload for one question. SessionID and Query
// are mandatory; TopK caps how many passages are retrieved (default 5).
type QueryRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
	TopK      int    `json:"n_results,omitempty"`
}

// QueryResponse echoes the query with the generated answer and the URL of
// the highest-ranked passage that informed it.
type QueryResponse struct {
	Query  string `json:"query"`
	Answer string `json:"answer"`
	Source string `json:"source"`
}
