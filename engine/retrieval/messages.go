package retrieval

// SubjectMatchRequest is the NATS subject the matcher worker serves.
const SubjectMatchRequest = "compliance.match.request"

// MatchRequest asks for the patterns most similar to an observed violation
// description.
type MatchRequest struct {
	Violation string `json:"violation"`
	TopK      int    `json:"top_k,omitempty"`
}

// MatchResponse carries ranked matches, or an error string when retrieval
// failed. Exactly one of the two is populated.
type MatchResponse struct {
	Matches []Match `json:"matches,omitempty"`
	Error   string  `json:"error,omitempty"`
}
