package types

// Document is a retrievable text unit with its stored metadata.
type Document struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ScoredDocument is a search hit. Score is a similarity in [0, 1], higher
// is closer.
type ScoredDocument struct {
	Document
	Score float64 `json:"score"`
}

// Source is the attribution for one document that contributed retrieved
// context to a turn.
type Source struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}
