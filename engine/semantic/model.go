package semantic

// SearchResult is a single k-NN hit. Only the summary payload fields are
// populated; full content is fetched separately by callers that need it.
type SearchResult struct {
	ComplianceID string  `json:"compliance_id"`
	Framework    string  `json:"framework"`
	Title        string  `json:"title"`
	Category     string  `json:"category"`
	RiskLevel    string  `json:"risk_level"`
	Score        float32 `json:"score"`
}

// VectorRecord is one pattern ready to be upserted into the collection.
type VectorRecord struct {
	ID        string // point UUID, derived deterministically from compliance_id
	Embedding []float32
	Payload   map[string]any
}
